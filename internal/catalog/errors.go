package catalog

import "errors"

// ErrUnknownCategory is returned for categories without a catalog entry.
var ErrUnknownCategory = errors.New("unknown group category")
