// Package metrics holds the domain counters of rosterd and the /metrics handler.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPath is used when the configured metrics path is empty.
const DefaultPath = "/metrics"

var (
	// Memberships counts created memberships by source (signup, owner, import).
	Memberships = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosterd_memberships_created_total",
		Help: "Number of memberships created, differentiated by source.",
	}, []string{"source"})

	// Signups counts created event signups, differentiated by waitlist state.
	Signups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosterd_signups_created_total",
		Help: "Number of event signups created.",
	}, []string{"waitlisted"})

	// Leaves counts memberships and signups that were ended, by scope.
	Leaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosterd_leaves_total",
		Help: "Number of memberships and signups deactivated.",
	}, []string{"scope"})

	// Checkins counts check-in attempts by result.
	Checkins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rosterd_checkins_total",
		Help: "Number of check-in attempts, differentiated by result.",
	}, []string{"result"})

	// CodesIssued counts generated authorization codes.
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rosterd_authorize_codes_issued_total",
		Help: "Number of check-in authorization codes generated.",
	})
)

// Register mounts the prometheus handler of the default registry on path.
func Register(app *fiber.App, path string) {
	if path == "" {
		path = DefaultPath
	}

	app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
}
