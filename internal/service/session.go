package service

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/weird"
	"github.com/totegamma/weird/internal/domain"
)

var tracer = otel.Tracer("session")

// SessionClient is the subset of the HTTP client used to resolve sessions.
type SessionClient interface {
	GetSessionInfo(ctx context.Context, cookies []*http.Cookie) (weird.SessionInfo, error)
	GetUserInfo(ctx context.Context, userID string, cookies []*http.Cookie) (weird.UserInfo, error)
}

type SessionService struct {
	config domain.Config
	client SessionClient
}

func NewSessionService(config domain.Config, client SessionClient) *SessionService {
	return &SessionService{
		config: config,
		client: client,
	}
}

func (s *SessionService) sessionCookieName() string {
	return s.config.CookiePrefix + "RauthySession"
}

func (s *SessionService) userCookieName() string {
	return s.config.CookiePrefix + "RauthyUser"
}

// GetSession resolves the auth server session behind the request cookies.
// It returns nil without error when the request carries no session cookie.
func (s *SessionService) GetSession(ctx context.Context, cookies []*http.Cookie) (*weird.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Service.GetSession")
	defer span.End()

	var forwarded []*http.Cookie
	for _, c := range cookies {
		if c.Name == s.sessionCookieName() || c.Name == s.userCookieName() {
			forwarded = append(forwarded, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	if len(forwarded) == 0 {
		return nil, nil
	}

	info, err := s.client.GetSessionInfo(ctx, forwarded)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if info.UserID == "" {
		return nil, errors.New("session has no user")
	}

	user, err := s.client.GetUserInfo(ctx, info.UserID, forwarded)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &weird.Session{Info: info, User: user}, nil
}
