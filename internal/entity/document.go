package entity

// Document is the shape handed over by the PDF source boundary: per-page
// plain text plus candidate tables already segmented into header and body.
type Document struct {
	Path   string
	Pages  []string
	Tables []Table
}

// FirstPage returns the text of page one, which is authoritative for header
// fields, or "" when the document yielded no text at all.
func (d *Document) FirstPage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0]
}

// Table is a heuristically detected table: a header row and zero or more
// body rows of string cells. No schema beyond the header is implied.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column returns the ordered cell values under the given header, one per
// body row. Rows shorter than the header position contribute "".
func (t *Table) Column(header string) []string {
	idx := -1
	for i, h := range t.Headers {
		if h == header {
			idx = i
			break
		}
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= 0 && idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, "")
		}
	}
	return out
}
