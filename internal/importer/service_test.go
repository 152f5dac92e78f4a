package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/shelflife/internal/importer"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

func TestService_Import(t *testing.T) {
	csv := `barcode,name,expiry
111,Milk,2025-12-01
222,Eggs,2025-12-08
333,Mystery,later
`

	ctrl := gomock.NewController(t)
	repo := item.NewMockRepository(ctrl)

	repo.EXPECT().
		AppendItem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, it *item.Item) error {
			assert.Equal(t, "ana", it.Username)
			if it.Barcode == "222" {
				return errors.New("disk full")
			}

			return nil
		}).
		Times(2)

	svc := importer.NewService(item.NewService(repo), importer.NewParser().WithClock(clock))

	report, err := svc.Import(context.Background(), strings.NewReader(csv), "ana")
	require.NoError(t, err)

	assert.Equal(t, "shelflife", report.Profile)
	require.Len(t, report.Imported, 1)
	assert.Equal(t, "111", report.Imported[0].Barcode)

	require.Len(t, report.Rejected, 2)
	assert.Equal(t, 4, report.Rejected[0].Line)
	assert.Equal(t, 3, report.Rejected[1].Line)
	assert.Contains(t, report.Rejected[1].Reason, "disk full")
}

func TestService_Import_UnknownFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := importer.NewService(item.NewService(item.NewMockRepository(ctrl)), nil)

	_, err := svc.Import(context.Background(), strings.NewReader("a,b,c\n1,2,3\n"), "ana")
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}
