package cooked_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/shelflife/internal/cooked"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
)

var now = time.Date(2025, time.November, 30, 19, 30, 0, 0, time.UTC)

func TestService_Save(t *testing.T) {
	cookedAt := time.Date(2025, time.November, 28, 12, 0, 0, 0, time.UTC)

	type args struct {
		params cooked.SaveParams
	}

	type testCase struct {
		name         string
		args         args
		estimate     *ocr.CookedEstimate
		estimateErr  error
		expectAppend bool
		wantName     string
		wantExpiry   string
		wantRaw      string
		wantCategory string
		wantErr      error
	}

	tests := []testCase{
		{
			name: "Service date",
			args: args{params: cooked.SaveParams{Username: "ana", Storage: ocr.StorageFridge}},
			estimate: &ocr.CookedEstimate{
				FoodName:         "Lasagne",
				Category:         "pasta",
				DaysAfterCooking: 3,
				ExpiryDate:       "2025-12-03",
				Reason:           "meat and dairy, refrigerated",
			},
			expectAppend: true,
			wantName:     "Lasagne",
			wantExpiry:   "2025-12-03",
			wantRaw:      "Estimated: meat and dairy, refrigerated",
			wantCategory: "pasta",
		},
		{
			name:         "Unnamed dish without reason",
			args:         args{params: cooked.SaveParams{Username: "ana", Storage: ocr.StorageRoom}},
			estimate:     &ocr.CookedEstimate{ExpiryDate: "2025-12-01T00:00:00Z"},
			expectAppend: true,
			wantName:     "Cooked meal",
			wantExpiry:   "2025-12-01",
			wantRaw:      "Estimated:",
		},
		{
			name:         "Days counted from cooking day",
			args:         args{params: cooked.SaveParams{Username: "ana", Storage: ocr.StorageFridge, CookedAt: &cookedAt}},
			estimate:     &ocr.CookedEstimate{FoodName: "Rice", DaysAfterCooking: 1},
			expectAppend: true,
			wantName:     "Rice",
			wantExpiry:   "2025-11-29",
			wantRaw:      "Estimated:",
		},
		{
			name:     "No date at all",
			args:     args{params: cooked.SaveParams{Username: "ana", Storage: ocr.StorageFridge}},
			estimate: &ocr.CookedEstimate{FoodName: "Soup"},
			wantErr:  cooked.ErrNoEstimate,
		},
		{
			name:        "Estimator fails",
			args:        args{params: cooked.SaveParams{Username: "ana", Storage: ocr.StorageFreezer}},
			estimateErr: errors.New("service down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			estimator := cooked.NewMockEstimator(ctrl)
			repo := item.NewMockRepository(ctrl)

			estimator.EXPECT().
				EstimateCooked(gomock.Any(), gomock.Any(), gomock.Any(), tt.args.params.Storage, tt.args.params.CookedAt).
				Return(tt.estimate, tt.estimateErr)

			if tt.expectAppend {
				repo.EXPECT().AppendItem(gomock.Any(), gomock.Any()).Return(nil)
			}

			items := item.NewService(repo).WithClock(func() time.Time { return now })
			svc := cooked.NewService(estimator, items).WithClock(func() time.Time { return now })

			got, err := svc.Save(context.Background(), tt.args.params)

			if tt.estimateErr != nil {
				assert.ErrorIs(t, err, tt.estimateErr)
				return
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			it := got.Item
			assert.Equal(t, "ana", it.Username)
			assert.Equal(t, "COOKED-1764531000000", it.Barcode)
			assert.True(t, cooked.IsCooked(it.Barcode))
			assert.Equal(t, tt.wantName, it.Name)
			assert.Equal(t, tt.wantExpiry, it.Expiry.String())
			assert.Equal(t, tt.wantRaw, it.ExpiryRaw)
			assert.Equal(t, tt.wantCategory, it.Categories)
			assert.Same(t, tt.estimate, got.Estimate)
		})
	}
}

func TestIsCooked(t *testing.T) {
	assert.True(t, cooked.IsCooked("COOKED-1"))
	assert.False(t, cooked.IsCooked("5601234567890"))
}
