// Package auth provides authentication middleware for the web application.
//
// The middleware reads the session cookie, puts the logged-in user into the request locals
// and redirects anonymous requests to the login page. Public paths skip it entirely; guest
// paths such as the login page send logged-in users home instead.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{LoginPath: "/login", HomePath: "/dashboard"}))
package auth
