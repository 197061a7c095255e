package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/safezoneph/syncd/domain"
)

// Config holds remote API client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the best-effort gateway to the remote SafeZonePH API. Transport
// and server failures are classified, never panicked past this boundary;
// callers decide whether local state stays authoritative.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient builds a remote client. The zero timeout defaults to 5s.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// SetToken stores the bearer token issued by the remote on login/register.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when logged out remotely.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Ping probes remote reachability for the connection monitor.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

type authResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        wireUser `json:"user"`
}

// Login authenticates against the remote and returns the normalized user
// plus the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	var out authResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", payload, &out); err != nil {
		return nil, "", err
	}
	user := out.User.Domain()
	return &user, out.AccessToken, nil
}

// Register creates the remote account and returns the canonical user record.
func (c *Client) Register(ctx context.Context, user *domain.User, password string) (*domain.User, string, error) {
	if user == nil {
		return nil, "", domain.ErrInvalidPayload
	}
	var out authResponse
	payload := registerPayload{
		Email:     user.Email,
		Password:  password,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Barangay:  user.Barangay,
		City:      user.City,
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", payload, &out); err != nil {
		return nil, "", err
	}
	canonical := out.User.Domain()
	return &canonical, out.AccessToken, nil
}

// GetTasks pulls the canonical task list.
func (c *Client) GetTasks(ctx context.Context) ([]domain.Task, error) {
	var out []wireTask
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(out))
	for _, w := range out {
		tasks = append(tasks, w.Domain())
	}
	return tasks, nil
}

// CreateTask mirrors a local task creation and returns the canonical record.
func (c *Client) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var out wireTask
	if err := c.do(ctx, http.MethodPost, "/api/tasks", taskPayload(task), &out); err != nil {
		return nil, err
	}
	canonical := out.Domain()
	return &canonical, nil
}

// UpdateTask mirrors a local task update.
func (c *Client) UpdateTask(ctx context.Context, id string, task *domain.Task) (*domain.Task, error) {
	var out wireTask
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, taskPayload(task), &out); err != nil {
		return nil, err
	}
	canonical := out.Domain()
	return &canonical, nil
}

// GetBuddies pulls the canonical buddy list.
func (c *Client) GetBuddies(ctx context.Context) ([]domain.Buddy, error) {
	var out []wireBuddy
	if err := c.do(ctx, http.MethodGet, "/api/buddies", nil, &out); err != nil {
		return nil, err
	}
	buddies := make([]domain.Buddy, 0, len(out))
	for _, w := range out {
		buddies = append(buddies, w.Domain())
	}
	return buddies, nil
}

// CreateBuddySession mirrors a local buddy session start.
func (c *Client) CreateBuddySession(ctx context.Context, session *domain.BuddySession) (*domain.BuddySession, error) {
	var out wireBuddySession
	if err := c.do(ctx, http.MethodPost, "/api/buddy-sessions", sessionPayload(session), &out); err != nil {
		return nil, err
	}
	canonical := out.Domain()
	return &canonical, nil
}

// BuddyCheckIn mirrors a wellness check-in against a buddy session.
func (c *Client) BuddyCheckIn(ctx context.Context, sessionID string, checkIn *domain.CheckIn) error {
	return c.do(ctx, http.MethodPost, "/api/buddy-sessions/"+sessionID+"/check-in", checkInPayload(checkIn), nil)
}

// GetActiveBuddySessions pulls running buddy sessions.
func (c *Client) GetActiveBuddySessions(ctx context.Context) ([]domain.BuddySession, error) {
	var out []wireBuddySession
	if err := c.do(ctx, http.MethodGet, "/api/buddy-sessions/active", nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]domain.BuddySession, 0, len(out))
	for _, w := range out {
		sessions = append(sessions, w.Domain())
	}
	return sessions, nil
}

// SendMessage relays a direct message.
func (c *Client) SendMessage(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	var out wireMessage
	if err := c.do(ctx, http.MethodPost, "/api/messages", messagePayload(message), &out); err != nil {
		return nil, err
	}
	sent := out.Domain()
	return &sent, nil
}

// GetConversations pulls conversation summaries.
func (c *Client) GetConversations(ctx context.Context) ([]domain.Conversation, error) {
	var out []wireConversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	conversations := make([]domain.Conversation, 0, len(out))
	for _, w := range out {
		conversations = append(conversations, w.Domain())
	}
	return conversations, nil
}

// GetPointsHistory pulls the canonical ledger.
func (c *Client) GetPointsHistory(ctx context.Context) ([]domain.PointsEntry, error) {
	var out []wirePointsEntry
	if err := c.do(ctx, http.MethodGet, "/api/points/history", nil, &out); err != nil {
		return nil, err
	}
	entries := make([]domain.PointsEntry, 0, len(out))
	for _, w := range out {
		entries = append(entries, w.Domain())
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c == nil || c.baseURL == "" {
		return domain.ErrRemoteUnavailable
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request", err)
		}
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.Debug("remote call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeUnavailable, "remote api unavailable", err)
	}

	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		return domain.NewError(domain.ErrCodeUnavailable, "remote api error")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.WrapError(domain.ErrCodeUnauthorized, remoteErrorMessage(resp.Body()), domain.ErrUnauthorized)
	case status >= http.StatusBadRequest:
		return domain.NewError(domain.ErrCodeInvalid, remoteErrorMessage(resp.Body()))
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "decode response", err)
	}
	return nil
}

// remoteErrorMessage digs a human-readable message out of the error body.
func remoteErrorMessage(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, m := range []string{parsed.Detail, parsed.Message, parsed.Error} {
			if m != "" {
				return m
			}
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "remote api rejected the request"
}
