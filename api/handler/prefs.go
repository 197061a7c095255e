package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/api/transport"
	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/pkg/httpcontext"
	prefsUC "github.com/safezoneph/syncd/usecase/prefs"
)

type PrefsHandler struct {
	baseHandler
	uc *prefsUC.UseCase
}

func NewPrefsHandler(uc *prefsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PrefsHandler {
	return &PrefsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List notifications
// @Tags prefs
// @Router /api/v1/notifications [get]
func (h *PrefsHandler) Notifications(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notifications, err := h.uc.Notifications(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, notifications)
}

// @Summary Add a notification
// @Tags prefs
// @Router /api/v1/notifications [post]
func (h *PrefsHandler) AddNotification(ctx *fasthttp.RequestCtx) {
	var req transport.NotificationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notification := &domain.Notification{
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	}
	if err := h.uc.Notify(stdCtx, notification); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, notification)
}

// @Summary Mark a notification read
// @Tags prefs
// @Router /api/v1/notifications/{id}/read [post]
func (h *PrefsHandler) MarkNotificationRead(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing notification id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.MarkNotificationRead(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"read": true})
}

// @Summary Clear notifications
// @Tags prefs
// @Router /api/v1/notifications [delete]
func (h *PrefsHandler) ClearNotifications(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ClearNotifications(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Get settings
// @Tags prefs
// @Router /api/v1/settings [get]
func (h *PrefsHandler) GetSettings(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.uc.Settings(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}

// @Summary Save settings
// @Tags prefs
// @Router /api/v1/settings [put]
func (h *PrefsHandler) SaveSettings(ctx *fasthttp.RequestCtx) {
	var settings domain.Settings
	if err := json.Unmarshal(ctx.PostBody(), &settings); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SaveSettings(stdCtx, &settings); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}

// @Summary Get onboarding progress
// @Tags prefs
// @Router /api/v1/onboarding [get]
func (h *PrefsHandler) GetOnboarding(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	onboarding, err := h.uc.Onboarding(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, onboarding)
}

// @Summary Save onboarding progress
// @Tags prefs
// @Router /api/v1/onboarding [put]
func (h *PrefsHandler) SaveOnboarding(ctx *fasthttp.RequestCtx) {
	var onboarding domain.Onboarding
	if err := json.Unmarshal(ctx.PostBody(), &onboarding); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SaveOnboarding(stdCtx, &onboarding); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, onboarding)
}
