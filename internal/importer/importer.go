// Package importer reads pantry lists exported from spreadsheets or other
// apps and turns each row into an item ready to append.
package importer

import (
	"errors"

	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

// ErrUnknownFormat is returned when no header row matches a known profile.
var ErrUnknownFormat = errors.New("no matching pantry list format found")

// Row is one importable line.
type Row struct {
	Line   int
	Params item.AppendParams
}

// Rejected is a line that looked like data but could not be imported.
type Rejected struct {
	Line   int
	Reason string
}

type Result struct {
	Profile  string
	Rows     []Row
	Rejected []Rejected
}
