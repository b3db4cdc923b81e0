package config

import (
	"time"

	"github.com/rosterd/rosterd/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Checkin   Checkin
	Metrics   Metrics
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CacheEnabled        bool    // true = enable cache, false = disable cache
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Argon2Salt          string  // salt for authorization code hashing
	Session             Session // session settings
}

// Auth holds the login providers.
type Auth struct {
	LocalDB LocalDBAuth
	OIDC    OIDCAuth
}

// LocalDBAuth configures username/password login against the users table.
type LocalDBAuth struct {
	Enabled       bool
	AllowRegister bool // show the self registration form
}

// OIDCAuth configures login through an OpenID Connect provider (Google by default).
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Checkin holds authorization code settings.
type Checkin struct {
	CodeLength int // default length of a freshly generated code
}

// Metrics exposes the prometheus registry.
type Metrics struct {
	Enabled bool
	Path    string
}
