package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the path of a route relative to its fiber.Router group.
	RouterRootPath = ""

	// DashboardPath is where logged-in users land.
	DashboardPath = RootPath + "dashboard"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// ErrorTemplate renders an error status page.
	ErrorTemplate = "error"
)
