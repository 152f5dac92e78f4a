package acquisition

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("a request is already in progress")
	ErrSessionEnded      = errors.New("session has ended")
)

// Stage is the step a scan session is at.
type Stage int

const (
	StageAwaitingBarcode Stage = iota
	StageAwaitingProductLookup
	StageAwaitingExpiryCapture
	StageReview
)

var stageNames = map[Stage]string{
	StageAwaitingBarcode:       "awaiting_barcode",
	StageAwaitingProductLookup: "awaiting_product_lookup",
	StageAwaitingExpiryCapture: "awaiting_expiry_capture",
	StageReview:                "review",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}

	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Record accumulates what a session has captured so far.
type Record struct {
	Barcode   string
	Product   *product.Product
	RawExpiry string
	Expiry    expiry.Date
}

func (r Record) clone() Record {
	if r.Product != nil {
		p := *r.Product
		r.Product = &p
	}

	return r
}

// Snapshot is the observable state of a workflow at one point in time.
type Snapshot struct {
	Generation uint64
	Stage      Stage
	// Err is the user-facing description of the last recoverable failure.
	Err        string
	Busy       bool
	CanAdvance bool
	Committed  bool
	Record     Record
}

func invalidTransition(command string, stage Stage) error {
	return fmt.Errorf("%s in %s: %w", command, stage, ErrInvalidTransition)
}
