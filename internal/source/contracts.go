package source

import (
	"context"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// DocumentSource loads one document from a path into its text form. Loading
// is the only stage allowed to fail per document; everything downstream
// degrades instead.
type DocumentSource interface {
	Load(ctx context.Context, path string) (*entity.Document, error)
}
