package products_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	"github.com/MrJamesThe3rd/shelflife/internal/http/products"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

func newRouter(repo catalog.Repository, remote catalog.Remote) http.Handler {
	router := chi.NewRouter()
	router.Route("/products", products.NewHandler(catalog.NewService(repo, remote)).Routes)

	return router
}

func TestHandler_Get(t *testing.T) {
	type testCase struct {
		name       string
		setupMock  func(repo *catalog.MockRepository, remote *catalog.MockRemote)
		wantStatus int
		wantName   string
	}

	tests := []testCase{
		{
			name: "Cached",
			setupMock: func(repo *catalog.MockRepository, _ *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "123").Return(&product.Product{Barcode: "123", Name: "Jam"}, nil)
			},
			wantStatus: http.StatusOK,
			wantName:   "Jam",
		},
		{
			name: "Unknown barcode",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "123").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "123").Return(nil, product.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Upstream failure",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "123").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "123").Return(nil, errors.New("open food facts request failed (503)"))
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)
			remote := catalog.NewMockRemote(ctrl)
			tt.setupMock(repo, remote)

			rec := httptest.NewRecorder()
			newRouter(repo, remote).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/123", nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantName == "" {
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantName, body["name"])
			assert.Equal(t, tt.wantName, body["display_name"])
		})
	}
}

func TestHandler_Put(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	router := newRouter(repo, catalog.NewMockRemote(ctrl))

	repo.EXPECT().
		SaveProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *product.Product) error {
			assert.Equal(t, "123", p.Barcode)
			assert.Equal(t, "Home Jam", p.Name)
			assert.Equal(t, "a", p.NutriScore)
			assert.True(t, p.QuantityValue.Valid)

			return nil
		})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/123",
		strings.NewReader(`{"name":" Home Jam ","quantity_value":"450","quantity_unit":"g","nutri_score":"A"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/products/123", strings.NewReader(`{"brand":"nobody"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
