package acquisition

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

//go:generate mockgen -source=collaborators.go -destination=collaborators_mock.go -package=acquisition

// Decoder emits decoded barcode text until the returned cancel func is
// called. Cancel must be safe to call more than once, and from inside the
// callback.
type Decoder interface {
	Subscribe(onDecode func(text string)) (cancel func())
}

type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (*product.Product, error)
}

type ExpiryReader interface {
	Extract(ctx context.Context, image io.Reader, filename string) (*ocr.Result, error)
}

// Store is append-only: committed items are never edited.
type Store interface {
	Append(ctx context.Context, params item.AppendParams) (*item.Item, error)
}
