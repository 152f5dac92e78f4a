package expiry_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	expiryHandler "github.com/MrJamesThe3rd/shelflife/internal/http/expiry"
)

func TestHandler_Parse(t *testing.T) {
	now := time.Date(2025, time.November, 30, 18, 0, 0, 0, time.UTC)

	router := chi.NewRouter()
	router.Route("/expiry", expiryHandler.NewHandler(func() time.Time { return now }).Routes)

	type testCase struct {
		name       string
		body       string
		wantStatus int
		wantBody   map[string]any
	}

	tests := []testCase{
		{
			name:       "Soon",
			body:       `{"text":"EXP 01/12/2025"}`,
			wantStatus: http.StatusOK,
			wantBody: map[string]any{
				"date": "2025-12-01", "rule": "day-first-numeric", "tier": "expires_soon", "days": float64(1),
				"badge": map[string]any{"text": "Expires in 1 day", "color": "orange"},
			},
		},
		{
			name:       "Explicit as_of",
			body:       `{"text":"1NOV26","as_of":"2026-11-03"}`,
			wantStatus: http.StatusOK,
			wantBody: map[string]any{
				"date": "2026-11-01", "rule": "day-month-name-year", "tier": "expired", "days": float64(-2),
				"badge": map[string]any{"text": "Expired 2 days ago", "color": "red"},
			},
		},
		{
			name:       "Unparseable",
			body:       `{"text":"not a date"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"error": "no expiry date found in text"},
		},
		{
			name:       "Bad as_of",
			body:       `{"text":"1NOV26","as_of":"tomorrow"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Bad JSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/expiry/parse", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody == nil {
				return
			}

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
