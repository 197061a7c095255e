package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/internal/infrastructure/monitor"
	"github.com/safezoneph/syncd/internal/services"
	"github.com/safezoneph/syncd/pkg/httpcontext"
)

type SyncHandler struct {
	baseHandler
	processor *services.OutboxProcessor
	refresher *services.Refresher
	monitor   *monitor.Monitor
}

func NewSyncHandler(processor *services.OutboxProcessor, refresher *services.Refresher, mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		baseHandler: newBaseHandler(adapter, logger),
		processor:   processor,
		refresher:   refresher,
		monitor:     mon,
	}
}

// @Summary Sync status
// @Tags sync
// @Router /api/v1/sync/status [get]
func (h *SyncHandler) Status(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"online":    status.Remote,
		"pending":   status.OutboxSize,
		"lastCheck": status.LastCheck,
	})
}

// @Summary Trigger a sync pass
// @Tags sync
// @Router /api/v1/sync/run [post]
func (h *SyncHandler) Run(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.processor.Drain(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.refresher.RefreshAll(stdCtx)

	status := h.monitor.GetStatus()
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"online":  h.monitor.IsOnline(),
		"pending": status.OutboxSize,
	})
}
