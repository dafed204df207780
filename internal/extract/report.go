package extract

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

var (
	metricRe         = regexp.MustCompile(`([A-Za-z\s]+):\s*\$?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	summaryHeadingRe = regexp.MustCompile(`(?i)(?:Summary|Abstract|Executive\s+Summary):`)
)

// ReportExtractor pulls title, date, summary block and labeled key metrics
// out of report page text. All candidate tables are retained verbatim.
type ReportExtractor struct {
	Logger *slog.Logger
}

func (e *ReportExtractor) Extract(doc *entity.Document) *entity.Record {
	rec := &entity.Record{Kind: constants.KindReport, SourceFile: filepath.Base(doc.Path)}
	rec.Tables = append(rec.Tables, doc.Tables...)

	text := doc.FirstPage()
	if text != "" {
		if line := firstNonEmptyLine(text); line != "" {
			rec.Title = &line
		}
		if m := dateRe.FindStringSubmatch(text); m != nil {
			v := m[1]
			rec.Date = &v
		}
		rec.Metrics = scanMetrics(text)
		if summary := scanSummary(text); summary != "" {
			rec.Summary = &summary
		}
	}

	if e.Logger != nil {
		e.Logger.Debug("extract.report",
			"has_title", rec.Title != nil,
			"has_date", rec.Date != nil,
			"metrics", len(rec.Metrics),
			"tables", len(rec.Tables),
		)
	}
	return rec
}

// scanMetrics collects every "label: $123,456.78" occurrence in first-seen
// label order. A repeated label updates the value in place instead of
// producing a duplicate entry. Values that fail numeric parsing keep the
// original string.
func scanMetrics(text string) []entity.Metric {
	matches := metricRe.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	var metrics []entity.Metric
	index := make(map[string]int, len(matches))
	for _, m := range matches {
		label := strings.TrimSpace(m[1])
		if label == "" {
			continue
		}
		metric := entity.Metric{Label: label}
		raw := strings.ReplaceAll(m[2], ",", "")
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			metric.Number = &f
		} else {
			metric.Text = m[2]
		}
		if i, seen := index[label]; seen {
			metrics[i] = metric
			continue
		}
		index[label] = len(metrics)
		metrics = append(metrics, metric)
	}
	return metrics
}

// scanSummary returns the text span between a summary-like heading and the
// next blank line or newline-then-capital boundary, or the end of the text.
// The boundary scan is manual since RE2 has no lookahead.
func scanSummary(text string) string {
	loc := summaryHeadingRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	end := len(rest)
	for i := 0; i < len(rest)-1; i++ {
		if rest[i] != '\n' {
			continue
		}
		// ASCII A-Z only: a UTF-8 lead byte after the newline must not be
		// mistaken for a capital letter.
		next := rest[i+1]
		if next == '\n' || ('A' <= next && next <= 'Z') {
			end = i
			break
		}
	}
	return strings.TrimSpace(rest[:end])
}
