package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/api/transport"
	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/pkg/httpcontext"
	pointsUC "github.com/safezoneph/syncd/usecase/points"
)

type PointsHandler struct {
	baseHandler
	uc *pointsUC.UseCase
}

func NewPointsHandler(uc *pointsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PointsHandler {
	return &PointsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Points ledger
// @Tags points
// @Router /api/v1/points/history [get]
func (h *PointsHandler) History(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.History(stdCtx, parseInt(string(ctx.QueryArgs().Peek("limit")), 50))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Rank and tier progress
// @Tags points
// @Router /api/v1/points/summary [get]
func (h *PointsHandler) Summary(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.uc.Summary(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}

// @Summary Credit points
// @Tags points
// @Router /api/v1/points/award [post]
func (h *PointsHandler) Award(ctx *fasthttp.RequestCtx) {
	var req transport.AwardRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Award(stdCtx, &domain.PointsEntry{
		Type:        req.Type,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, user)
}
