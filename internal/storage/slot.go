// Package storage holds the durable slots a cart snapshot is saved to.
// Every slot stores one opaque value, overwritten wholesale on Save, and
// returns nil data from Load when nothing was saved yet.
package storage

import "errors"

const DefaultKey = "minicart:cart"

var ErrEmptyKey = errors.New("storage: empty key")
