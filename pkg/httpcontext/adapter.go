// Package httpcontext derives deadline-bound stdlib contexts from
// fasthttp requests.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// HeaderRequestID carries the correlation id for a request, following the
// same header convention the auth middleware uses for X-User-ID and
// X-Session-ID.
const HeaderRequestID = "X-Request-ID"

// Adapter bounds every handler's work with the configured request timeout.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context that expires with the request budget and tags
// the exchange with a correlation id: the caller's X-Request-ID when one
// is supplied, a fresh one otherwise. The id is stamped on both request
// and response so handlers and the client log the same value.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
		ctx.Request.Header.Set(HeaderRequestID, id)
	}
	ctx.Response.Header.Set(HeaderRequestID, id)

	return context.WithTimeout(context.Background(), a.timeout)
}
