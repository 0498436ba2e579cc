package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/internal/present/rest/middleware"
	"github.com/totegamma/weird/internal/present/rest/presenter"
	"github.com/totegamma/weird/internal/usecase"
	"github.com/totegamma/weird/leaf"
)

const maxAvatarSize = 8 << 20

// Realtime streams profile events to websocket subscribers.
type Realtime interface {
	Realtime(ctx context.Context, request <-chan []string, response chan<- domain.ProfileEvent)
}

type Handler struct {
	profile      *usecase.ProfileUsecase
	customDomain *usecase.CustomDomainUsecase
	signal       Realtime
}

func NewHandler(
	profile *usecase.ProfileUsecase,
	customDomain *usecase.CustomDomainUsecase,
	signal Realtime,
) *Handler {
	return &Handler{
		profile:      profile,
		customDomain: customDomain,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, session *middleware.SessionMiddleware) {
	e.GET("/dns-challenge/:challenge/:user_id", h.handleDNSChallenge)

	api := e.Group("/api/v1")
	api.GET("/profiles", h.handleGetProfiles)
	api.GET("/profile/id/:id", h.handleGetProfileByID)
	api.GET("/profile/username/:username", h.handleGetProfileByUsername)
	api.GET("/profile/id/:id/avatar", h.handleGetAvatarByID)
	api.GET("/profile/username/:username/avatar", h.handleGetAvatarByUsername)
	api.PUT("/profile/id/:id", h.handleSetProfile, session.IdentifySession)
	api.PUT("/profile/id/:id/avatar", h.handleSetAvatar, session.IdentifySession)
	if h.signal != nil {
		api.GET("/realtime", h.handleRealtime)
	}

	account := e.Group("/account", session.IdentifySession)
	account.GET("/:user_id/custom-domain", h.handleGetCustomDomain)
	account.POST("/:user_id/custom-domain", h.handleSetCustomDomain)
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrVerificationFailed):
		return presenter.BadRequestMessage(c, domain.ErrVerificationFailed.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedFederation):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

// authorize reports whether the requester may act on userID's account.
// When it may not, the rejection has already been written.
func authorize(c echo.Context, userID string) (bool, error) {
	requester, ok := middleware.RequesterID(c.Request().Context())
	if !ok {
		return false, presenter.Unauthorized(c)
	}
	if requester != userID {
		return false, presenter.Forbidden(c)
	}
	return true, nil
}

func (h *Handler) handleGetProfiles(c echo.Context) error {
	ctx := c.Request().Context()

	profiles, err := h.profile.GetProfiles(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profiles)
}

func (h *Handler) handleGetProfileByID(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.profile.GetProfileByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profile)
}

func (h *Handler) handleGetProfileByUsername(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.profile.GetProfileByUsername(ctx, c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profile)
}

func (h *Handler) handleSetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	if ok, err := authorize(c, userID); !ok {
		return err
	}

	var profile domain.Profile
	err := c.Bind(&profile)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	// the custom domain only changes through the verification flow
	profile.CustomDomain, err = h.profile.GetCustomDomain(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return respondError(c, err)
	}

	err = h.profile.SetProfileByID(ctx, userID, profile)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func avatarResponse(c echo.Context, avatar leaf.RawImage) error {
	return c.Blob(http.StatusOK, avatar.Format, avatar.Data)
}

func (h *Handler) handleGetAvatarByID(c echo.Context) error {
	ctx := c.Request().Context()

	avatar, err := h.profile.GetAvatarByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return avatarResponse(c, avatar)
}

func (h *Handler) handleGetAvatarByUsername(c echo.Context) error {
	ctx := c.Request().Context()

	avatar, err := h.profile.GetAvatarByUsername(ctx, c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return avatarResponse(c, avatar)
}

func (h *Handler) handleSetAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	if ok, err := authorize(c, userID); !ok {
		return err
	}

	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxAvatarSize)
	data, err := io.ReadAll(body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	avatar, err := leaf.NewRawImage(c.Request().Header.Get(echo.HeaderContentType), data)
	if err != nil {
		return respondError(c, err)
	}

	err = h.profile.SetAvatarByID(ctx, userID, avatar)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleGetCustomDomain(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("user_id")

	if ok, err := authorize(c, userID); !ok {
		return err
	}

	page, err := h.customDomain.Load(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, page)
}

func (h *Handler) handleSetCustomDomain(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("user_id")

	if ok, err := authorize(c, userID); !ok {
		return err
	}

	err := h.customDomain.Submit(ctx, userID, c.FormValue("custom_domain"))
	if err != nil {
		slog.InfoContext(
			ctx, "custom domain update rejected",
			slog.String("user", userID),
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleDNSChallenge(c echo.Context) error {
	ok, err := h.customDomain.Answer(c.Param("user_id"), c.Param("challenge"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.NoContent(http.StatusOK)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type     string   `json:"type"`
	Prefixes []string `json:"prefixes"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.ProfileEvent)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Prefixes:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, "Socket subscribe",
					slog.Any("prefixes", req.Prefixes),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
