// Package catalog holds the static defaults a new group or event is seeded with:
// role templates per category and setting definitions per owner.
//
// The last role of every role list is the lowest-priority role. It is used as the
// fallback whenever a label (for example a blank whitelist position) names no role.
//
// Group settings are the explicit group keys plus a "default_<name>" copy of every
// event setting; new events of the group are seeded from those copies. An explicit
// group key always wins over a generated one.
package catalog
