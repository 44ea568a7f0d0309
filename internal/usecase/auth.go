package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/config"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOffice Role = "office"
)

// ParseRole maps a stored role onto the two panel roles. Only "admin" grants
// admin; anything else, including an empty value, is office.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleOffice
}

type Profile struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is the authenticated caller of a request.
type Session struct {
	UserID string
	Role   Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanDelete reports whether the session may delete assets.
func (s Session) CanDelete() bool {
	return s.IsAdmin()
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, config.CTX_KEY_SESSION, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(config.CTX_KEY_SESSION).(Session)
	return s, ok
}

// used by middleware
func (u Usecase) VerifyIDToken(ctx context.Context, token string) (string, error) {
	return u.identityProvider.VerifyIDToken(ctx, token)
}

// Authenticate resolves the role of an already verified user. A user without
// a profile row is an office user.
func (u Usecase) Authenticate(ctx context.Context, userID string) (Session, error) {
	p, err := u.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Session{UserID: userID, Role: RoleOffice}, nil
	}
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: userID, Role: ParseRole(string(p.Role))}, nil
}
