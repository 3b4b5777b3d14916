package fetch

import (
	"context"

	"github.com/okian/vigil/pkg/logger"
	"github.com/okian/vigil/pkg/metrics"
)

// FetchAttention retrieves the attention feed: a JSON array of flat records.
// On any failure it returns an empty batch and the error; the feed degrades
// to zero records for this pass without affecting the disposition fetch.
func (f *Client) FetchAttention(ctx context.Context) ([]AttentionRecord, error) {
	var records []AttentionRecord
	if err := f.getJSON(ctx, f.attentionURL, &records); err != nil {
		metrics.RecordFetch(FeedAttention, "failure")
		return nil, err
	}

	metrics.RecordFetch(FeedAttention, "success")
	metrics.RecordFetchRecords(FeedAttention, len(records))
	f.logger.Debug(ctx, "fetched attention feed", logger.Int("records", len(records)))
	return records, nil
}
