package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/weird"
	"github.com/totegamma/weird/internal/domain"
)

var tracer = otel.Tracer("auth")

type SessionResolver interface {
	GetSession(ctx context.Context, cookies []*http.Cookie) (*weird.Session, error)
}

type SessionMiddleware struct {
	sessions SessionResolver
}

func NewSessionMiddleware(sessions SessionResolver) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
	}
}

// IdentifySession attaches the requester's session to the request context
// when the auth cookies resolve to one. Requests without a valid session
// pass through anonymously.
func (s *SessionMiddleware) IdentifySession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifySession")
		defer span.End()

		session, err := s.sessions.GetSession(ctx, c.Request().Cookies())
		if err != nil {
			span.RecordError(errors.Wrap(err, "SessionMiddleware.IdentifySession: GetSession failed"))
		} else if session != nil {
			ctx = context.WithValue(ctx, domain.SessionCtxKey, session)
			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, session.User.ID)
			span.SetAttributes(attribute.String("RequesterId", session.User.ID))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequesterID returns the user id attached by IdentifySession.
func RequesterID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
	return id, ok && id != ""
}
