// Package session keeps the logged-in user in a fiber session storage keyed by the session cookie.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/models"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrNoSession is returned when the storage has no data for a session id.
var ErrNoSession = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User models.User
}

// NewData returns session data for user without the password hash.
func NewData(user models.User) *Data {
	user.Password = ""

	return &Data{User: user}
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNoSession
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
func Init(storage fiber.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// Login stores user in a new session and sets the session cookie.
func Login(c *fiber.Ctx, cfg *config.Config, user models.User) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	if err = NewData(user).Write(sessionID, cfg.Webserver.Session.ExpiryTime); err != nil {
		return err
	}

	c.Cookie(cookie(cfg, sessionID, int(cfg.Webserver.Session.ExpiryTime.Seconds())))

	return nil
}

// Logout deletes the session of the request and expires the cookie.
func Logout(c *fiber.Ctx, cfg *config.Config) error {
	var err error

	if sessionID := c.Cookies(CookieName); sessionID != "" {
		err = Store.Storage.Delete(sessionID)
	}

	c.Cookie(cookie(cfg, "", -1))

	return err
}

func cookie(cfg *config.Config, value string, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    value,
		MaxAge:   maxAge,
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
