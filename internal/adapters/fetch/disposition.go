package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/vigil/pkg/logger"
	"github.com/okian/vigil/pkg/metrics"
)

// The disposition feed is positional: each row is an array of heterogeneous
// cells read by fixed offset. These constants are the schema-on-read
// contract with the upstream and must not drift.
const (
	dispColAnnounced = 1 // minguo slash-date of the announcement
	dispColCode      = 2 // security code
	dispColName      = 3 // security name
	dispColPeriod    = 6 // minguo date range joined by a wide dash
	dispColMeasures  = 8 // free-text disposition measures

	// minDispositionRow is the smallest row that still carries the measures
	// cell. Shorter rows are skipped.
	minDispositionRow = 9
)

// dispositionPayload absorbs the feed's two wire shapes: a tagged container
// {"data": [...]} or a bare array [...]. The ambiguity is resolved here,
// once, at the fetch boundary.
type dispositionPayload struct {
	rows [][]any
}

func (p *dispositionPayload) UnmarshalJSON(b []byte) error {
	switch firstToken(b) {
	case '{':
		var tagged struct {
			Data [][]any `json:"data"`
		}
		if err := json.Unmarshal(b, &tagged); err != nil {
			return fmt.Errorf("tagged disposition payload: %w", err)
		}
		p.rows = tagged.Data
		return nil
	case '[':
		var bare [][]any
		if err := json.Unmarshal(b, &bare); err != nil {
			return fmt.Errorf("bare disposition payload: %w", err)
		}
		p.rows = bare
		return nil
	default:
		return fmt.Errorf("disposition payload is neither object nor array")
	}
}

// firstToken returns the first non-whitespace byte of b, or 0.
func firstToken(b []byte) byte {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// FetchDisposition retrieves the disposition feed. Row-level problems (short
// rows, blank codes, non-scalar cells) are logged and skipped one row at a
// time; the rest of the batch survives. A transport or payload-level failure
// empties the whole batch for this feed only.
func (f *Client) FetchDisposition(ctx context.Context) ([]DispositionRecord, error) {
	var payload dispositionPayload
	if err := f.getJSON(ctx, f.dispositionURL, &payload); err != nil {
		metrics.RecordFetch(FeedDisposition, "failure")
		return nil, err
	}

	records := make([]DispositionRecord, 0, len(payload.rows))
	for i, row := range payload.rows {
		rec, err := parseDispositionRow(row)
		if err != nil {
			metrics.RecordRowSkipped(FeedDisposition, skipReason(err))
			f.logger.Warn(ctx, "skipping disposition row",
				logger.Int("row", i),
				logger.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordFetch(FeedDisposition, "success")
	metrics.RecordFetchRecords(FeedDisposition, len(records))
	f.logger.Debug(ctx, "fetched disposition feed",
		logger.Int("rows", len(payload.rows)),
		logger.Int("records", len(records)),
	)
	return records, nil
}

// errShortRow marks rows below the minimum cell count.
type errShortRow struct{ got int }

func (e errShortRow) Error() string {
	return fmt.Sprintf("row has %d cells, need at least %d", e.got, minDispositionRow)
}

// parseDispositionRow extracts one record from a positional row.
func parseDispositionRow(row []any) (DispositionRecord, error) {
	if len(row) < minDispositionRow {
		return DispositionRecord{}, errShortRow{got: len(row)}
	}

	code := cellString(row[dispColCode])
	if code == "" {
		return DispositionRecord{}, fmt.Errorf("row has empty security code")
	}

	return DispositionRecord{
		AnnouncedRaw: cellString(row[dispColAnnounced]),
		Code:         code,
		Name:         cellString(row[dispColName]),
		PeriodRaw:    cellString(row[dispColPeriod]),
		Measures:     cellString(row[dispColMeasures]),
	}, nil
}

// skipReason maps a row error to a low-cardinality metrics label.
func skipReason(err error) string {
	if _, ok := err.(errShortRow); ok {
		return "short_row"
	}
	return "bad_row"
}

// cellString renders a heterogeneous JSON cell as a string. Numbers appear
// in the feed for ordinal columns; anything non-scalar renders empty.
func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return ""
	}
}
