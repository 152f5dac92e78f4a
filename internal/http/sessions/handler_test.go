package sessions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/http/sessions"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

var now = time.Date(2025, time.November, 30, 12, 0, 0, 0, time.UTC)

type sessionBody struct {
	ID         string `json:"id"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
	CanAdvance bool   `json:"can_advance"`
	Barcode    string `json:"barcode"`
	Expiry     string `json:"expiry"`
	Product    *struct {
		Name string `json:"name"`
	} `json:"product"`
	Freshness *struct {
		Tier string `json:"tier"`
		Days int    `json:"days"`
	} `json:"freshness"`
}

type env struct {
	router   http.Handler
	registry *sessions.Registry
	products *acquisition.MockProductLookup
	reader   *acquisition.MockExpiryReader
	store    *acquisition.MockStore
	user     string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)

	e := &env{
		registry: sessions.NewRegistry(time.Hour, func() time.Time { return now }),
		products: acquisition.NewMockProductLookup(ctrl),
		reader:   acquisition.NewMockExpiryReader(ctrl),
		store:    acquisition.NewMockStore(ctrl),
	}

	h := sessions.NewHandler(e.registry, e.products, e.reader, e.store, func() time.Time { return now })

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if e.user != "" {
				r = r.WithContext(auth.WithUsername(r.Context(), e.user))
			}

			next.ServeHTTP(w, r)
		})
	})
	router.Route("/sessions", h.Routes)

	e.router = router

	t.Cleanup(e.registry.Close)

	return e
}

func (e *env) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, sessionBody) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var got sessionBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}

	return rec, got
}

func (e *env) create(t *testing.T) string {
	t.Helper()

	rec, got := e.do(t, http.MethodPost, "/sessions/", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "awaiting_barcode", got.Stage)

	return got.ID
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestSessions_FullFlow(t *testing.T) {
	e := newEnv(t)

	e.products.EXPECT().
		Lookup(gomock.Any(), "0123456789012").
		Return(&product.Product{Barcode: "0123456789012", Name: "Oat Milk"}, nil)

	e.store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p item.AppendParams) (*item.Item, error) {
			return &item.Item{ID: uuid.New(), Barcode: p.Barcode, Name: p.Name, Expiry: p.Expiry, SavedAt: now}, nil
		})

	id := e.create(t)
	base := "/sessions/" + id

	rec, got := e.do(t, http.MethodPost, base+"/barcode?wait=true", jsonBody(`{"text":"0123456789012"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_product_lookup", got.Stage)
	assert.True(t, got.CanAdvance)
	require.NotNil(t, got.Product)
	assert.Equal(t, "Oat Milk", got.Product.Name)

	rec, _ = e.do(t, http.MethodPost, base+"/barcode", jsonBody(`{"text":"999"}`), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, got = e.do(t, http.MethodPost, base+"/advance", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_expiry_capture", got.Stage)

	rec, got = e.do(t, http.MethodPost, base+"/expiry", jsonBody(`{"text":"not a date"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_expiry_capture", got.Stage)
	assert.NotEmpty(t, got.Error)

	rec, got = e.do(t, http.MethodPost, base+"/expiry", jsonBody(`{"text":"EXP 01/12/2025"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review", got.Stage)
	assert.Equal(t, "2025-12-01", got.Expiry)
	require.NotNil(t, got.Freshness)
	assert.Equal(t, "expires_soon", got.Freshness.Tier)
	assert.Equal(t, 1, got.Freshness.Days)

	rec, _ = e.do(t, http.MethodPost, base+"/commit", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var committed struct {
		Barcode string `json:"barcode"`
		Name    string `json:"name"`
		Expiry  string `json:"expiry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &committed))
	assert.Equal(t, "0123456789012", committed.Barcode)
	assert.Equal(t, "Oat Milk", committed.Name)
	assert.Equal(t, "2025-12-01", committed.Expiry)

	rec, _ = e.do(t, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessions_CommitBeforeReview(t *testing.T) {
	e := newEnv(t)
	id := e.create(t)

	rec, _ := e.do(t, http.MethodPost, "/sessions/"+id+"/commit", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, got := e.do(t, http.MethodGet, "/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_barcode", got.Stage)
	assert.Empty(t, got.Barcode)
}

func TestSessions_ImageUpload(t *testing.T) {
	e := newEnv(t)

	e.products.EXPECT().Lookup(gomock.Any(), "123").Return(&product.Product{Barcode: "123"}, nil)
	e.reader.EXPECT().
		Extract(gomock.Any(), gomock.Any(), "label.jpg").
		Return(&ocr.Result{Raw: "BBD 1NOV26"}, nil)

	id := e.create(t)
	base := "/sessions/" + id

	e.do(t, http.MethodPost, base+"/barcode?wait=true", jsonBody(`{"text":"123"}`), "application/json")
	e.do(t, http.MethodPost, base+"/advance", nil, "")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "label.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	rec, got := e.do(t, http.MethodPost, base+"/expiry?wait=true", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review", got.Stage)
	assert.Equal(t, "2026-11-01", got.Expiry)
}

func TestSessions_RestartAndDelete(t *testing.T) {
	e := newEnv(t)

	e.products.EXPECT().Lookup(gomock.Any(), "123").Return(nil, product.ErrNotFound)

	id := e.create(t)
	base := "/sessions/" + id

	_, got := e.do(t, http.MethodPost, base+"/barcode?wait=true", jsonBody(`{"text":"123"}`), "application/json")
	assert.Equal(t, product.ErrNotFound.Error(), got.Error)

	rec, _ := e.do(t, http.MethodPost, base+"/advance", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, got = e.do(t, http.MethodPost, base+"/restart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_barcode", got.Stage)
	assert.Empty(t, got.Error)

	rec, _ = e.do(t, http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, e.registry.Len())
}

func TestSessions_Ownership(t *testing.T) {
	e := newEnv(t)

	e.user = "ana"
	id := e.create(t)

	e.user = "bo"
	rec, _ := e.do(t, http.MethodGet, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e.user = "ana"
	rec, _ = e.do(t, http.MethodGet, "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/sessions/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistry_SweepsIdleSessions(t *testing.T) {
	current := now
	registry := sessions.NewRegistry(time.Minute, func() time.Time { return current })

	newSession := func() *sessions.Session {
		d := acquisition.NewPushDecoder()
		wf := acquisition.NewWorkflow(d, nil, nil, nil)
		require.NoError(t, wf.Start())

		return &sessions.Session{ID: uuid.New(), Workflow: wf, Decoder: d}
	}

	old := newSession()
	registry.Add(old)

	current = current.Add(2 * time.Minute)
	registry.Add(newSession())

	assert.Equal(t, 1, registry.Len())

	_, ok := registry.Get(old.ID, "")
	assert.False(t, ok)
	assert.Equal(t, 0, old.Decoder.Subscribers())
}
