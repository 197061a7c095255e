package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/api/transport"
	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/pkg/httpcontext"
	messageUC "github.com/safezoneph/syncd/usecase/message"
)

type MessageHandler struct {
	baseHandler
	uc *messageUC.UseCase
}

func NewMessageHandler(uc *messageUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Send a direct message
// @Tags messages
// @Router /api/v1/messages [post]
func (h *MessageHandler) Send(ctx *fasthttp.RequestCtx) {
	var req transport.MessageRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Content == "" {
		h.respondInvalid(ctx, "message content is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	message, err := h.uc.Send(stdCtx, &domain.Message{
		SenderID:   string(ctx.Request.Header.Peek("X-User-ID")),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	// A provisional id means the message was parked in the outbox rather
	// than delivered.
	status := http.StatusCreated
	if strings.HasPrefix(message.ID, domain.LocalIDPrefix) {
		status = http.StatusAccepted
	}
	h.respondSuccess(ctx, status, message)
}

// @Summary List conversations
// @Tags messages
// @Router /api/v1/conversations [get]
func (h *MessageHandler) Conversations(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	conversations, err := h.uc.Conversations(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, conversations)
}
