package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

func TestService_Lookup(t *testing.T) {
	oatMilk := &product.Product{Barcode: "5000000000001", Name: "Oat Milk", Brand: "Oatly"}

	type testCase struct {
		name      string
		setupMock func(repo *catalog.MockRepository, remote *catalog.MockRemote)
		want      *product.Product
		wantErr   error
	}

	tests := []testCase{
		{
			name: "CacheHit",
			setupMock: func(repo *catalog.MockRepository, _ *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(oatMilk, nil)
			},
			want: oatMilk,
		},
		{
			name: "CacheMissStoresRemoteResult",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "5000000000001").Return(oatMilk, nil)
				repo.EXPECT().SaveProduct(gomock.Any(), oatMilk).Return(nil)
			},
			want: oatMilk,
		},
		{
			name: "CacheWriteFailureIsIgnored",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "5000000000001").Return(oatMilk, nil)
				repo.EXPECT().SaveProduct(gomock.Any(), oatMilk).Return(errors.New("disk full"))
			},
			want: oatMilk,
		},
		{
			name: "CacheReadFailureFallsBackToRemote",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(nil, errors.New("db down"))
				remote.EXPECT().Lookup(gomock.Any(), "5000000000001").Return(oatMilk, nil)
				repo.EXPECT().SaveProduct(gomock.Any(), oatMilk).Return(nil)
			},
			want: oatMilk,
		},
		{
			name: "NormalisedRemoteCodeIsCachedUnderScannedBarcode",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				padded := &product.Product{Barcode: "0005000000000001", Name: "Oat Milk", Brand: "Oatly"}

				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "5000000000001").Return(padded, nil)
				repo.EXPECT().
					SaveProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *product.Product) error {
						assert.Equal(t, "5000000000001", p.Barcode)
						assert.Equal(t, "Oat Milk", p.Name)

						return nil
					})
			},
			want: &product.Product{Barcode: "0005000000000001", Name: "Oat Milk", Brand: "Oatly"},
		},
		{
			name: "RemoteNotFoundIsNotCached",
			setupMock: func(repo *catalog.MockRepository, remote *catalog.MockRemote) {
				repo.EXPECT().FindProduct(gomock.Any(), "5000000000001").Return(nil, catalog.ErrNotCached)
				remote.EXPECT().Lookup(gomock.Any(), "5000000000001").Return(nil, product.ErrNotFound)
			},
			wantErr: product.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)
			remote := catalog.NewMockRemote(ctrl)
			tt.setupMock(repo, remote)

			svc := catalog.NewService(repo, remote)

			got, err := svc.Lookup(context.Background(), "5000000000001")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo, catalog.NewMockRemote(ctrl))

	assert.Error(t, svc.Learn(context.Background(), &product.Product{Name: "No barcode"}))

	p := &product.Product{Barcode: "123", Name: "Jam"}
	repo.EXPECT().SaveProduct(gomock.Any(), p).Return(errors.New("locked"))
	assert.Error(t, svc.Learn(context.Background(), p))
}
