package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/api/transport"
	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/pkg/httpcontext"
	buddyUC "github.com/safezoneph/syncd/usecase/buddy"
)

type BuddyHandler struct {
	baseHandler
	uc *buddyUC.UseCase
}

func NewBuddyHandler(uc *buddyUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BuddyHandler {
	return &BuddyHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List buddies
// @Tags buddies
// @Router /api/v1/buddies [get]
func (h *BuddyHandler) ListBuddies(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	buddies, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, buddies)
}

// @Summary Add a buddy
// @Tags buddies
// @Router /api/v1/buddies [post]
func (h *BuddyHandler) AddBuddy(ctx *fasthttp.RequestCtx) {
	var req transport.BuddyRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name == "" {
		h.respondInvalid(ctx, "buddy name is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	buddy, err := h.uc.Add(stdCtx, &domain.Buddy{
		UserID:       h.userID(ctx),
		Name:         req.Name,
		Avatar:       req.Avatar,
		RiskLevel:    req.RiskLevel,
		Relationship: req.Relationship,
		Phone:        req.Phone,
		Location:     req.Location,
		Skills:       req.Skills,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, buddy)
}

// @Summary Remove a buddy
// @Tags buddies
// @Router /api/v1/buddies/{id} [delete]
func (h *BuddyHandler) RemoveBuddy(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing buddy id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Remove(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Start a buddy session
// @Tags buddies
// @Router /api/v1/buddy-sessions [post]
func (h *BuddyHandler) StartSession(ctx *fasthttp.RequestCtx) {
	var req transport.StartSessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.BuddyID == "" {
		h.respondInvalid(ctx, "buddyId is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.StartSession(stdCtx, req.BuddyID, h.userID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, session)
}

// @Summary List active buddy sessions
// @Tags buddies
// @Router /api/v1/buddy-sessions/active [get]
func (h *BuddyHandler) ActiveSessions(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sessions, err := h.uc.ActiveSessions(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sessions)
}

// @Summary Record a check-in
// @Tags buddies
// @Router /api/v1/buddy-sessions/{id}/check-in [post]
func (h *BuddyHandler) CheckIn(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	if sessionID == "" {
		h.respondInvalid(ctx, "missing session id")
		return
	}

	var req transport.CheckInRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	checkIn, user, err := h.uc.CheckIn(stdCtx, sessionID, &domain.CheckIn{
		Mood:    req.Mood,
		Message: req.Message,
		Notes:   req.Notes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{
		"checkIn": checkIn,
		"user":    user,
	})
}

// @Summary Complete a buddy session
// @Tags buddies
// @Router /api/v1/buddy-sessions/{id}/complete [post]
func (h *BuddyHandler) CompleteSession(ctx *fasthttp.RequestCtx) {
	sessionID, _ := ctx.UserValue("id").(string)
	if sessionID == "" {
		h.respondInvalid(ctx, "missing session id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, user, err := h.uc.CompleteSession(stdCtx, sessionID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"session": session,
		"user":    user,
	})
}

// @Summary Check-in history
// @Tags buddies
// @Router /api/v1/check-ins [get]
func (h *BuddyHandler) CheckInHistory(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	checkIns, err := h.uc.CheckInHistory(stdCtx, parseInt(string(ctx.QueryArgs().Peek("limit")), 50))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, checkIns)
}

func (h *BuddyHandler) userID(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Peek("X-User-ID"))
}
