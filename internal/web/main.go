package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/config"
	accesslog "github.com/rosterd/rosterd/internal/logger/adapter/fiber"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/web/handler"
	oidchandler "github.com/rosterd/rosterd/internal/web/handler/auth/oidc"
	"github.com/rosterd/rosterd/internal/web/handler/dashboard"
	"github.com/rosterd/rosterd/internal/web/handler/event"
	"github.com/rosterd/rosterd/internal/web/handler/group"
	"github.com/rosterd/rosterd/internal/web/handler/login"
	"github.com/rosterd/rosterd/internal/web/handler/logout"
	"github.com/rosterd/rosterd/internal/web/handler/register"
	authmiddleware "github.com/rosterd/rosterd/internal/web/middleware/auth"
	"github.com/rosterd/rosterd/internal/web/request"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	staticPath = "/static"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a signal and shuts the http server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service with all handlers registered.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	app := fiber.New(fiber.Config{
		ReadBufferSize:    8192,
		AppName:           "rosterd",
		CaseSensitive:     true,
		Immutable:         true,
		PassLocalsToViews: true,
		Views:             newTemplateEngine(cfg),
	})

	s := &Service{cfg: cfg, App: app, db: db}

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = metrics.DefaultPath
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:      cfg.Log,
		SkipPaths:   []string{CheckAlivePath, metricsPath},
		UserIDLocal: request.LocalUserID,
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !s.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	if cfg.Metrics.Enabled {
		metrics.Register(app, metricsPath)
	}

	app.Use(staticPath,
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(staticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(authmiddleware.New(authmiddleware.Config{
		LoginPath:   login.Path,
		HomePath:    handler.DashboardPath,
		GuestPaths:  []string{login.Path, register.Path},
		PublicPaths: []string{logout.Path, "/auth/", CheckAlivePath, metricsPath},
		Next: func(c *fiber.Ctx) bool {
			// the whitelist feed is guarded by the group access token instead of a session
			return strings.Contains(c.Path(), "/whitelist/")
		},
	}))

	deps := handler.NewDeps(cfg, db)

	handlers := []handler.Service{
		&login.Handler,
		&register.Handler,
		&logout.Handler,
		&oidchandler.Handler,
		&dashboard.Handler,
		&event.Handler,
		&group.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(handler.DashboardPath)
	})

	return s, nil
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	engine := html.NewFileSystem(http.FS(Templates()), ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		engine = html.New("./internal/web/templates", ".gohtml")
		engine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	return engine
}
