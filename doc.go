// Package main starts rosterd, a web service for group and event management.
//
// Groups are classes or volunteer organizations. Members join a group with a group role,
// sign up for its events with an event role and check in at an event with the authorization
// code of an authorizer. Roles, settings and whitelists decide who gets which role.
//
// Run "rosterd start --config ./etc/" to serve the web interface and "rosterd config dump" to
// print the effective configuration.
package main
