package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/checkin"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/provision"
)

// Deps are the services shared by all handlers.
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Auth      *auth.Service
	Resolver  *membership.Resolver
	Provision *provision.Service
	Issuer    *checkin.Issuer
}

// NewDeps builds the services of the handlers on db.
func NewDeps(cfg *config.Config, db *gorm.DB) *Deps {
	authService := auth.NewService(db)

	return &Deps{
		Cfg:       cfg,
		DB:        db,
		Auth:      authService,
		Resolver:  membership.NewResolver(db),
		Provision: provision.New(db),
		Issuer:    checkin.NewIssuer(db, authService, cfg.Webserver.Argon2Salt),
	}
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
