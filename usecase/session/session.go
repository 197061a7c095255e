package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/safezoneph/syncd/domain"
	"github.com/safezoneph/syncd/repository"
	"github.com/safezoneph/syncd/usecase"
)

// Built-in demo credential. Demo login never touches the network and never
// queues anything for sync.
const (
	DemoEmail    = "demo@safezoneph.com"
	DemoPassword = "demo123"
	demoUserID   = "demo-user"
)

// Config holds session issuance settings.
type Config struct {
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
}

// LoginResult bundles everything a successful authentication produces.
type LoginResult struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// UseCase is the session manager. Authentication resolves locally first;
// the remote API only enriches the result when reachable.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	remote   usecase.RemoteAuth
	logger   *zap.Logger
	cfg      Config
}

func New(users repository.UserRepository, sessions repository.SessionRepository, remote usecase.RemoteAuth, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		remote:   remote,
		logger:   logger,
		cfg:      cfg,
	}
}

// Login resolves credentials in order: demo account, locally registered
// accounts, then the remote API. A remote outage never blocks a credential
// the device already knows.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}

	if email == DemoEmail {
		if password != DemoPassword {
			return nil, domain.ErrInvalidCredentials
		}
		return uc.establish(ctx, demoUser())
	}

	if account, err := uc.users.GetAccount(ctx, email); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		user := account.User
		uc.adoptRemote(ctx, &user, email, password)
		return uc.establish(ctx, &user)
	}

	// Unknown locally; the remote is the last resort.
	user, token, err := uc.remote.Login(ctx, email, password)
	if err != nil {
		uc.logger.Debug("remote login failed", zap.String("email", email), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	uc.remote.SetToken(token)
	uc.storeAccount(ctx, user, email, password)
	return uc.establish(ctx, user)
}

// Register creates the account locally first, then mirrors it to the
// remote on a best-effort basis. Registration succeeds offline.
func (uc *UseCase) Register(ctx context.Context, user *domain.User, password string) (*LoginResult, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	user.Email = normalizeEmail(user.Email)
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return nil, domain.NewError(domain.ErrCodeInvalid, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password must be at least 8 characters")
	}
	if user.Email == DemoEmail {
		return nil, domain.ErrEmailTaken
	}
	if _, err := uc.users.GetAccount(ctx, user.Email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	user.ID = domain.LocalIDPrefix + uuid.NewString()
	user.Points = 0
	user.Rank = domain.RankFor(0)
	if user.Skills == nil {
		user.Skills = []string{}
	}
	user.CreatedAt = time.Now()

	if err := uc.storeAccount(ctx, user, user.Email, password); err != nil {
		return nil, err
	}

	if canonical, token, err := uc.remote.Register(ctx, user, password); err == nil {
		uc.remote.SetToken(token)
		*user = *canonical
		_ = uc.storeAccount(ctx, user, user.Email, password)
	} else {
		uc.logger.Info("remote registration deferred", zap.String("email", user.Email), zap.Error(err))
	}

	return uc.establish(ctx, user)
}

// Logout tears the session down locally and forgets the remote token. It
// never fails on remote state.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		if err := uc.sessions.Delete(ctx, sessionID); err != nil {
			uc.logger.Warn("session delete failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	uc.remote.ClearToken()
	return uc.users.DeleteCurrent(ctx)
}

// CurrentUser returns the authenticated user record.
func (uc *UseCase) CurrentUser(ctx context.Context) (*domain.User, error) {
	return uc.users.Current(ctx)
}

// UpdateProfile applies a partial update to the current user. Profile data
// lives on the device only; nothing is queued for sync.
func (uc *UseCase) UpdateProfile(ctx context.Context, upd domain.UserUpdate) (*domain.User, error) {
	user, err := uc.users.Current(ctx)
	if err != nil {
		return nil, err
	}
	if user.Apply(upd) {
		user.Rank = domain.RankFor(user.Points)
	}
	if err := uc.users.SaveCurrent(ctx, user); err != nil {
		return nil, err
	}
	uc.syncAccountRecord(ctx, user)
	return user, nil
}

// SessionActive reports whether the session exists and has not expired.
// Used by the auth middleware so a revoked session invalidates its token.
func (uc *UseCase) SessionActive(ctx context.Context, sessionID string) bool {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return !session.IsExpired(time.Now())
}

// establish persists the user as current, opens a session and signs a token.
func (uc *UseCase) establish(ctx context.Context, user *domain.User) (*LoginResult, error) {
	if err := uc.users.SaveCurrent(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// adoptRemote refreshes a locally known account from the remote when it is
// reachable. Remote state wins; failures leave the local record untouched.
func (uc *UseCase) adoptRemote(ctx context.Context, user *domain.User, email, password string) {
	remoteUser, token, err := uc.remote.Login(ctx, email, password)
	if err != nil {
		uc.logger.Debug("remote refresh skipped", zap.String("email", email), zap.Error(err))
		return
	}
	uc.remote.SetToken(token)
	*user = *remoteUser
	uc.storeAccount(ctx, user, email, password)
}

func (uc *UseCase) storeAccount(ctx context.Context, user *domain.User, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.users.SaveAccount(ctx, &domain.LocalAccount{
		Email:        email,
		PasswordHash: string(hash),
		User:         *user,
		CreatedAt:    time.Now(),
	})
}

// syncAccountRecord keeps the stored credential's user snapshot aligned
// with profile edits so the next offline login sees them.
func (uc *UseCase) syncAccountRecord(ctx context.Context, user *domain.User) {
	account, err := uc.users.GetAccount(ctx, user.Email)
	if err != nil {
		return
	}
	account.User = *user
	if err := uc.users.SaveAccount(ctx, account); err != nil {
		uc.logger.Warn("account snapshot update failed", zap.String("email", user.Email), zap.Error(err))
	}
}

func (uc *UseCase) signToken(userID, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"iss":        uc.cfg.JWTIssuer,
		"exp":        expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.cfg.JWTSecret))
}

// demoUser is the built-in offline account.
func demoUser() *domain.User {
	return &domain.User{
		ID:         demoUserID,
		Email:      DemoEmail,
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		Barangay:   "San Isidro",
		City:       "Quezon City",
		Points:     500,
		Rank:       domain.RankFor(500),
		Skills:     []string{"first aid", "community organizing"},
		IsVerified: true,
		CreatedAt:  time.Now(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
