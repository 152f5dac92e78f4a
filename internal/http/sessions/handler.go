package sessions

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
)

const maxImageSize = 10 << 20

type Handler struct {
	registry *Registry
	products acquisition.ProductLookup
	reader   acquisition.ExpiryReader
	store    acquisition.Store
	clock    func() time.Time
	opts     []acquisition.Option
}

func NewHandler(
	registry *Registry,
	products acquisition.ProductLookup,
	reader acquisition.ExpiryReader,
	store acquisition.Store,
	clock func() time.Time,
	opts ...acquisition.Option,
) *Handler {
	if clock == nil {
		clock = time.Now
	}

	return &Handler{
		registry: registry,
		products: products,
		reader:   reader,
		store:    store,
		clock:    clock,
		opts:     opts,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/barcode", h.barcode)
	r.Post("/{id}/retry", h.retry)
	r.Post("/{id}/advance", h.advance)
	r.Post("/{id}/restart", h.restart)
	r.Post("/{id}/expiry", h.submitExpiry)
	r.Post("/{id}/commit", h.commit)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())
	decoder := acquisition.NewPushDecoder()

	opts := append([]acquisition.Option{
		acquisition.WithClock(h.clock),
		acquisition.WithUsername(username),
	}, h.opts...)

	s := &Session{
		ID:       uuid.New(),
		Username: username,
		Workflow: acquisition.NewWorkflow(decoder, h.products, h.reader, h.store, opts...),
		Decoder:  decoder,
	}

	if err := s.Workflow.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.registry.Add(s)

	h.writeSession(w, http.StatusCreated, s)
}

// session resolves the {id} URL parameter or writes the error response.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	s, ok := h.registry.Get(id, auth.Username(r.Context()))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}

	return s, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	maybeWait(r, s)
	h.writeSession(w, http.StatusOK, s)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.registry.Remove(s.ID)

	w.WriteHeader(http.StatusNoContent)
}

type barcodeRequest struct {
	Text string `json:"text"`
}

func (h *Handler) barcode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req barcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.Decoder.Push(req.Text) == 0 {
		http.Error(w, "session is not waiting for a barcode", http.StatusConflict)
		return
	}

	maybeWait(r, s)
	h.writeSession(w, http.StatusOK, s)
}

func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(s *Session) error { return s.Workflow.Retry() })
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(s *Session) error { return s.Workflow.Advance() })
}

func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(s *Session) error {
		s.Workflow.Restart()
		return nil
	})
}

type expiryRequest struct {
	Text string `json:"text"`
}

// submitExpiry accepts either JSON label text or a multipart "image" upload.
func (h *Handler) submitExpiry(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		var req expiryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h.command(w, r, func(s *Session) error { return s.Workflow.SubmitExpiryText(req.Text) })

		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}

	h.command(w, r, func(s *Session) error { return s.Workflow.SubmitExpiryImage(image, header.Filename) })
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	it, err := s.Workflow.Commit(r.Context())
	if err != nil {
		if isCommandError(err) {
			writeCommandError(w, err)
			return
		}

		slog.Error("failed to commit item", "session", s.ID, "error", err)
		h.writeSession(w, http.StatusBadGateway, s)

		return
	}

	h.registry.Remove(s.ID)

	writeJSON(w, http.StatusCreated, toCommitted(it))
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request, run func(s *Session) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := run(s); err != nil {
		writeCommandError(w, err)
		return
	}

	maybeWait(r, s)
	h.writeSession(w, http.StatusOK, s)
}

// maybeWait blocks until in-flight collaborator calls finish when the client
// asks with ?wait=true, so it can skip polling.
func maybeWait(r *http.Request, s *Session) {
	if r.URL.Query().Get("wait") == "true" {
		s.Workflow.Wait()
	}
}

func isCommandError(err error) bool {
	return errors.Is(err, acquisition.ErrInvalidTransition) ||
		errors.Is(err, acquisition.ErrBusy) ||
		errors.Is(err, acquisition.ErrSessionEnded)
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, acquisition.ErrInvalidTransition), errors.Is(err, acquisition.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, acquisition.ErrSessionEnded):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, s *Session) {
	writeJSON(w, status, toResponse(s.ID, s.Workflow.Snapshot(), expiry.DateOf(h.clock())))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
