// Package acquisition sequences one scan session: barcode, product lookup,
// expiry capture and review, ending in an append to the item store.
package acquisition

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
)

const (
	DefaultCallTimeout = 20 * time.Second

	msgUnparseable = "Could not detect an expiry date. Try taking a clearer photo."
)

type Option func(*Workflow)

// WithClock sets the time source used for the parser's reference year.
func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) { w.clock = clock }
}

// WithNotify registers a callback that receives a snapshot after every state
// change. It runs without the workflow lock held, possibly from a collaborator
// goroutine.
func WithNotify(fn func(Snapshot)) Option {
	return func(w *Workflow) { w.notify = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// WithUsername attributes committed items to a user.
func WithUsername(username string) Option {
	return func(w *Workflow) { w.username = username }
}

// WithCallTimeout bounds each product lookup and expiry extraction.
func WithCallTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.callTimeout = d }
}

// Workflow is the state machine for one acquisition session. It is safe for
// concurrent use; collaborator calls run on their own goroutines and report
// back tagged with the generation they were issued in.
type Workflow struct {
	decoder  Decoder
	products ProductLookup
	reader   ExpiryReader
	store    Store

	clock       func() time.Time
	notify      func(Snapshot)
	logger      *slog.Logger
	username    string
	callTimeout time.Duration

	mu         sync.Mutex
	generation uint64
	stage      Stage
	record     Record
	errMsg     string
	busy       bool
	lookedUp   bool
	committed  bool
	closed     bool

	cancelDecode func()
	cancelCall   context.CancelFunc

	calls sync.WaitGroup
}

func NewWorkflow(decoder Decoder, products ProductLookup, reader ExpiryReader, store Store, opts ...Option) *Workflow {
	w := &Workflow{
		decoder:     decoder,
		products:    products,
		reader:      reader,
		store:       store,
		clock:       time.Now,
		logger:      slog.Default(),
		callTimeout: DefaultCallTimeout,
		stage:       StageAwaitingBarcode,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start subscribes to the decoder. Calling it again while already listening
// does nothing.
func (w *Workflow) Start() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrSessionEnded
	}

	gen := w.generation
	w.mu.Unlock()

	w.subscribe(gen)

	return nil
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.snapshotLocked()
}

// Wait blocks until every collaborator call issued so far has returned,
// including ones that have gone stale.
func (w *Workflow) Wait() {
	w.calls.Wait()
}

// Retry repeats a failed product lookup for the recorded barcode.
func (w *Workflow) Retry() error {
	w.mu.Lock()

	if err := w.guardLocked("retry", StageAwaitingProductLookup); err != nil {
		w.mu.Unlock()
		return err
	}

	if w.lookedUp {
		w.mu.Unlock()
		return fmt.Errorf("retry after successful lookup: %w", ErrInvalidTransition)
	}

	gen := w.generation
	barcode := w.record.Barcode
	ctx := w.beginCallLocked()
	w.errMsg = ""
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	go w.lookup(ctx, gen, barcode)

	return nil
}

// Advance moves from a successful product lookup to expiry capture.
func (w *Workflow) Advance() error {
	w.mu.Lock()

	if err := w.guardLocked("advance", StageAwaitingProductLookup); err != nil {
		w.mu.Unlock()
		return err
	}

	if !w.lookedUp {
		w.mu.Unlock()
		return fmt.Errorf("advance before product lookup succeeded: %w", ErrInvalidTransition)
	}

	w.stage = StageAwaitingExpiryCapture
	w.errMsg = ""
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	return nil
}

// SubmitExpiryText parses label text. An unparseable date is not an error:
// the stage is kept and Snapshot.Err describes the problem.
func (w *Workflow) SubmitExpiryText(text string) error {
	w.mu.Lock()

	if err := w.guardLocked("submit expiry", StageAwaitingExpiryCapture); err != nil {
		w.mu.Unlock()
		return err
	}

	w.applyExpiryLocked(text)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	return nil
}

// SubmitExpiryImage sends a label photo to the expiry reader. The result
// arrives asynchronously.
func (w *Workflow) SubmitExpiryImage(image []byte, filename string) error {
	w.mu.Lock()

	if err := w.guardLocked("submit expiry image", StageAwaitingExpiryCapture); err != nil {
		w.mu.Unlock()
		return err
	}

	gen := w.generation
	ctx := w.beginCallLocked()
	w.errMsg = ""
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	go w.extract(ctx, gen, image, filename)

	return nil
}

// Commit appends the reviewed record to the store and ends the session.
// A store failure keeps the session in review so the commit can be retried.
func (w *Workflow) Commit(ctx context.Context) (*item.Item, error) {
	w.mu.Lock()

	if err := w.guardLocked("commit", StageReview); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	gen := w.generation
	params := w.appendParamsLocked()
	w.busy = true
	w.errMsg = ""
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	saved, err := w.store.Append(ctx, params)

	w.mu.Lock()

	if gen != w.generation {
		w.mu.Unlock()
		w.logger.Debug("discarding stale commit", "generation", gen)

		if err != nil {
			return nil, fmt.Errorf("commit item: %w", err)
		}

		return saved, nil
	}

	w.busy = false

	if err != nil {
		w.errMsg = "Could not save item: " + err.Error()
		snap = w.snapshotLocked()
		w.mu.Unlock()

		w.emit(snap)

		return nil, fmt.Errorf("commit item: %w", err)
	}

	w.committed = true
	snap = w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)

	return saved, nil
}

// Restart abandons the session and begins a new one with an empty record.
// Results of calls issued before the restart are discarded when they arrive.
func (w *Workflow) Restart() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	cancelDecode, cancelCall := w.resetLocked()
	w.stage = StageAwaitingBarcode
	w.record = Record{}
	w.errMsg = ""
	w.lookedUp = false
	w.committed = false
	gen := w.generation
	snap := w.snapshotLocked()
	w.mu.Unlock()

	cancelAll(cancelDecode, cancelCall)
	w.emit(snap)
	w.subscribe(gen)
}

// Close ends the workflow for good. In-flight results are discarded.
func (w *Workflow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	w.closed = true
	cancelDecode, cancelCall := w.resetLocked()
	w.mu.Unlock()

	cancelAll(cancelDecode, cancelCall)
}

func (w *Workflow) subscribe(gen uint64) {
	cancel := w.decoder.Subscribe(func(text string) {
		w.onDecode(gen, text)
	})

	w.mu.Lock()
	if gen != w.generation || w.closed || w.stage != StageAwaitingBarcode || w.cancelDecode != nil {
		w.mu.Unlock()
		cancel()

		return
	}

	w.cancelDecode = cancel
	w.mu.Unlock()
}

func (w *Workflow) onDecode(gen uint64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	w.mu.Lock()

	if gen != w.generation {
		w.mu.Unlock()
		w.logger.Debug("discarding stale decode", "generation", gen)

		return
	}

	// First decode wins; the decoder may keep firing until it is cancelled.
	if w.closed || w.stage != StageAwaitingBarcode || w.record.Barcode != "" {
		w.mu.Unlock()
		return
	}

	w.record.Barcode = text
	w.stage = StageAwaitingProductLookup
	cancel := w.cancelDecode
	w.cancelDecode = nil
	ctx := w.beginCallLocked()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	w.emit(snap)

	go w.lookup(ctx, gen, text)
}

func (w *Workflow) lookup(ctx context.Context, gen uint64, barcode string) {
	defer w.calls.Done()

	p, err := w.products.Lookup(ctx, barcode)

	w.mu.Lock()

	if gen != w.generation {
		w.mu.Unlock()
		w.logger.Debug("discarding stale product lookup", "generation", gen, "barcode", barcode)

		return
	}

	w.endCallLocked()

	if err != nil {
		w.errMsg = err.Error()
		w.logger.Info("product lookup failed", "barcode", barcode, "error", err)
	} else {
		w.record.Product = p
		w.lookedUp = true
		w.errMsg = ""
	}

	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)
}

func (w *Workflow) extract(ctx context.Context, gen uint64, image []byte, filename string) {
	defer w.calls.Done()

	res, err := w.reader.Extract(ctx, bytes.NewReader(image), filename)

	w.mu.Lock()

	if gen != w.generation {
		w.mu.Unlock()
		w.logger.Debug("discarding stale expiry extraction", "generation", gen)

		return
	}

	w.endCallLocked()

	switch {
	case err != nil:
		w.errMsg = err.Error()
		w.logger.Info("expiry extraction failed", "error", err)
	case res.Empty():
		w.errMsg = msgUnparseable
	default:
		w.applyExtractionLocked(res)
	}

	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.emit(snap)
}

// applyExtractionLocked prefers the service's own date and falls back to
// parsing the raw text it saw.
func (w *Workflow) applyExtractionLocked(res *ocr.Result) {
	year := w.clock().Year()

	for _, candidate := range []string{res.Expiry, res.Raw} {
		if d, ok := expiry.Parse(candidate, year); ok {
			raw := res.Raw
			if strings.TrimSpace(raw) == "" {
				raw = res.Expiry
			}

			w.setExpiryLocked(raw, d)

			return
		}
	}

	w.errMsg = msgUnparseable
}

func (w *Workflow) applyExpiryLocked(text string) {
	d, ok := expiry.Parse(text, w.clock().Year())
	if !ok {
		w.errMsg = msgUnparseable
		return
	}

	w.setExpiryLocked(text, d)
}

func (w *Workflow) setExpiryLocked(raw string, d expiry.Date) {
	w.record.RawExpiry = strings.TrimSpace(raw)
	w.record.Expiry = d
	w.stage = StageReview
	w.errMsg = ""
}

// guardLocked rejects a command unless the session is open, idle and at want.
func (w *Workflow) guardLocked(command string, want Stage) error {
	if w.closed || w.committed {
		return ErrSessionEnded
	}

	if w.stage != want {
		return invalidTransition(command, w.stage)
	}

	if w.busy {
		return ErrBusy
	}

	return nil
}

func (w *Workflow) beginCallLocked() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), w.callTimeout)

	w.busy = true
	w.cancelCall = cancel
	w.calls.Add(1)

	return ctx
}

func (w *Workflow) endCallLocked() {
	if w.cancelCall != nil {
		w.cancelCall()
		w.cancelCall = nil
	}

	w.busy = false
}

// resetLocked starts a new generation and hands back the cancel funcs of the
// old one, to be called once the lock is released.
func (w *Workflow) resetLocked() (func(), context.CancelFunc) {
	w.generation++

	cancelDecode, cancelCall := w.cancelDecode, w.cancelCall
	w.cancelDecode = nil
	w.cancelCall = nil
	w.busy = false

	return cancelDecode, cancelCall
}

func cancelAll(cancelDecode func(), cancelCall context.CancelFunc) {
	if cancelDecode != nil {
		cancelDecode()
	}

	if cancelCall != nil {
		cancelCall()
	}
}

func (w *Workflow) appendParamsLocked() item.AppendParams {
	params := item.AppendParams{
		Username:  w.username,
		Barcode:   w.record.Barcode,
		Expiry:    w.record.Expiry,
		ExpiryRaw: w.record.RawExpiry,
	}

	if p := w.record.Product; p != nil {
		params.Name = p.Name
		params.Brand = p.Brand
		params.Quantity = p.Quantity
		params.QuantityValue = p.QuantityValue
		params.QuantityUnit = p.QuantityUnit
		params.ImageURL = p.ImageURL
		params.Categories = p.Categories
		params.NutriScore = p.NutriScore
	}

	return params
}

func (w *Workflow) snapshotLocked() Snapshot {
	return Snapshot{
		Generation: w.generation,
		Stage:      w.stage,
		Err:        w.errMsg,
		Busy:       w.busy,
		CanAdvance: w.stage == StageAwaitingProductLookup && w.lookedUp && !w.busy,
		Committed:  w.committed,
		Record:     w.record.clone(),
	}
}

func (w *Workflow) emit(snap Snapshot) {
	if w.notify != nil {
		w.notify(snap)
	}
}
