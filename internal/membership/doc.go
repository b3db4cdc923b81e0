// Package membership decides which role a user gets when joining a group or signing up for an
// event, and keeps at most one active membership per (group, user) and one active signup per
// (event, user).
//
// Role selection runs in this order:
//
//  1. group joins only: a whitelist entry for the user's email names the role; a blank position
//     falls back to the lowest default group role of the group's category
//  2. with choose_role active, the role picked on the form (Selection.RoleID)
//  3. the role named by the scope's role setting
//
// Leaving marks the record inactive. Joining again creates a new row, inactive rows are kept.
package membership
