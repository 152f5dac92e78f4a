package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

func TestClient_Lookup(t *testing.T) {
	type testCase struct {
		name      string
		status    int
		body      string
		want      *product.Product
		wantErr   bool
		wantErrIs error
	}

	tests := []testCase{
		{
			name:   "Found",
			status: http.StatusOK,
			body: `{"status":1,"code":"5000000000001","product":{
				"product_name":"Oat Milk","brands":"Oatly","quantity":"1 L",
				"image_url":"https://img/1.jpg","categories":"Plant milks",
				"nutriscore_grade":"B","product_quantity":"1000","product_quantity_unit":"ml"}}`,
			want: &product.Product{
				Barcode:       "5000000000001",
				Name:          "Oat Milk",
				Brand:         "Oatly",
				Quantity:      "1 L",
				ImageURL:      "https://img/1.jpg",
				Categories:    "Plant milks",
				NutriScore:    "b",
				QuantityValue: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				QuantityUnit:  "ml",
			},
		},
		{
			name:   "Numeric quantity and missing fields",
			status: http.StatusOK,
			body:   `{"status":1,"code":"123","product":{"product_name":"Eggs","product_quantity":12.5}}`,
			want: &product.Product{
				Barcode:       "123",
				Name:          "Eggs",
				QuantityValue: decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
			},
		},
		{
			name:      "Status zero",
			status:    http.StatusOK,
			body:      `{"status":0,"status_verbose":"product not found","code":"123"}`,
			wantErr:   true,
			wantErrIs: product.ErrNotFound,
		},
		{
			name:      "Not found status code",
			status:    http.StatusNotFound,
			body:      `{"status":0}`,
			wantErr:   true,
			wantErrIs: product.ErrNotFound,
		},
		{
			name:    "Server error",
			status:  http.StatusBadGateway,
			body:    `oops`,
			wantErr: true,
		},
		{
			name:    "Malformed body",
			status:  http.StatusOK,
			body:    `{"status":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotUA string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotUA = r.Header.Get("User-Agent")

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := product.NewClient(srv.URL, "shelflife-test/1.0", 5*time.Second)

			got, err := c.Lookup(context.Background(), "123")

			assert.Equal(t, "/api/v0/product/123.json", gotPath)
			assert.Equal(t, "shelflife-test/1.0", gotUA)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Barcode, got.Barcode)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Brand, got.Brand)
			assert.Equal(t, tt.want.Quantity, got.Quantity)
			assert.Equal(t, tt.want.ImageURL, got.ImageURL)
			assert.Equal(t, tt.want.Categories, got.Categories)
			assert.Equal(t, tt.want.NutriScore, got.NutriScore)
			assert.Equal(t, tt.want.QuantityUnit, got.QuantityUnit)
			assert.Equal(t, tt.want.QuantityValue.Valid, got.QuantityValue.Valid)

			if tt.want.QuantityValue.Valid {
				assert.True(t, tt.want.QuantityValue.Decimal.Equal(got.QuantityValue.Decimal))
			}
		})
	}
}

func TestClient_Lookup_EmptyBarcode(t *testing.T) {
	c := product.NewClient("http://127.0.0.1:1", "", time.Second)

	_, err := c.Lookup(context.Background(), "  ")
	assert.Error(t, err)
}

func TestProduct_DisplayName(t *testing.T) {
	assert.Equal(t, "Oat Milk", (&product.Product{Barcode: "1", Name: "Oat Milk"}).DisplayName())
	assert.Equal(t, "1", (&product.Product{Barcode: "1"}).DisplayName())

	var p *product.Product
	assert.Equal(t, "", p.DisplayName())
}
