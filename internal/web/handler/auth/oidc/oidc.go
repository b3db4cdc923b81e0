package oidc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	stateTTL = 5 * time.Minute
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	oidcProvider *auth.OIDCProvider

	mu         sync.Mutex
	stateStore map[string]time.Time
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init initializes the OIDC handler. A provider that cannot be reached disables OIDC login
// without failing the start.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil || deps.DB == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = deps.Cfg
	s.stateStore = make(map[string]time.Time)

	oidcProvider, err := auth.NewOIDCProvider(context.Background(), deps.Cfg.Auth.OIDC, deps.DB)
	if err != nil {
		if errors.Is(err, auth.ErrOIDCDisabled) {
			log.Info().Msg("OIDC authentication is disabled by configuration")
		} else {
			log.Warn().Err(err).Msg("Failed to initialize OIDC provider - OIDC authentication will be disabled")
		}

		return nil
	}

	s.oidcProvider = oidcProvider

	log.Info().Msg("OIDC authentication provider initialized")

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	go s.cleanupStates()

	return nil
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	// Generate state token for CSRF protection
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate state token")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	s.putState(state, time.Now().Add(stateTTL))

	return c.Redirect(s.oidcProvider.GetAuthURL(state))
}

// Callback handles the OIDC callback.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("Missing code or state in OIDC callback")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid callback parameters")
	}

	if !s.takeState(state, time.Now()) {
		log.Error().Str("state", state).Msg("Invalid or expired state token")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state token")
	}

	user, err := s.oidcProvider.HandleCallback(c.UserContext(), code)

	switch {
	case errors.Is(err, auth.ErrUserAccountDisabled), errors.Is(err, auth.ErrEmailNotVerified):
		log.Warn().Err(err).Msg("OIDC login rejected")
		return c.Status(fiber.StatusForbidden).SendString(err.Error())
	case err != nil:
		log.Error().Err(err).Msg("OIDC authentication failed")
		return c.Status(fiber.StatusUnauthorized).SendString("Authentication failed")
	}

	if err = session.Login(c, s.cfg, *user); err != nil {
		log.Error().Err(err).Msg("Failed to write session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	log.Info().Str("username", user.Username).Msg("User logged in successfully via OIDC")

	return c.Redirect(handler.DashboardPath)
}

func (s *Service) putState(state string, expiration time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateStore[state] = expiration
}

// takeState removes state and reports whether it existed and had not expired at now.
func (s *Service) takeState(state string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiration, ok := s.stateStore[state]
	delete(s.stateStore, state)

	return ok && !now.After(expiration)
}

func (s *Service) pruneStates(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for state, expiration := range s.stateStore {
		if now.After(expiration) {
			delete(s.stateStore, state)
		}
	}
}

// cleanupStates periodically removes expired state tokens.
func (s *Service) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for now := range ticker.C {
		s.pruneStates(now)
	}
}
