package extract

import (
	"log/slog"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// FieldExtractor turns one loaded document into a best-effort record.
// Extraction never fails: fields whose patterns do not match stay unset and
// a record with nothing set is a valid result.
type FieldExtractor interface {
	Extract(doc *entity.Document) *entity.Record
}

// ForKind returns the extractor matching the document kind.
func ForKind(kind constants.DocKind, logger *slog.Logger) FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if kind == constants.KindReport {
		return &ReportExtractor{Logger: logger}
	}
	return &InvoiceExtractor{Logger: logger}
}
