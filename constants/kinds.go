package constants

import (
	"fmt"
	"strings"
)

// DocKind selects which field set, insight set and chart set apply to a batch.
type DocKind string

const (
	KindInvoice DocKind = "invoice"
	KindReport  DocKind = "report"
)

// ParseDocKind normalizes and validates a user-supplied document kind.
func ParseDocKind(s string) (DocKind, error) {
	switch DocKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInvoice:
		return KindInvoice, nil
	case KindReport:
		return KindReport, nil
	default:
		return "", fmt.Errorf("unknown document kind: %q (want invoice or report)", s)
	}
}

// AllowedExtensions holds the file extensions accepted for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
