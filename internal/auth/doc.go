// Package auth provides authentication and authorization for rosterd.
//
// Authorization is scoped: every group and every event owns its own roles, and a user holds at
// most one active role per scope, through a membership (group) or a signup (event). A role grants
// either the wildcard "*" or a comma separated list taken from the closed vocabulary of its scope:
//
//   - group scope: edit_settings, create_event
//   - event scope: authorize
//
// HasPermission answers a check for a single role. Service looks up the active role of a user in a
// group or event, and RequireGroupPermission / RequireEventPermission protect fiber routes.
//
// Authentication is handled by LocalProvider (username and Argon2id password) and OIDCProvider
// (Google login through OpenID Connect). Both seed the user settings of newly created accounts.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	ok, err := authService.Can(ctx, models.ScopeGroup, group.ID, user.ID, auth.PermCreateEvent)
//
//	router.Get("/e/new",
//	    auth.RequireGroupPermission(authService, auth.PermCreateEvent),
//	    handler,
//	)
package auth
