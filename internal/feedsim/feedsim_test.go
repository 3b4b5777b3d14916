package feedsim

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okian/vigil/internal/adapters/fetch"
	"github.com/okian/vigil/internal/domain/rocdate"
	"github.com/okian/vigil/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newGenerator(opts ...GeneratorOption) *Generator {
	base := []GeneratorOption{
		WithSeed(42),
		WithBaseDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	return NewGenerator(append(base, opts...)...)
}

func TestGeneratorDeterminism(t *testing.T) {
	a := newGenerator().Attention()
	b := newGenerator().Attention()
	require.Equal(t, a, b)
}

func TestAttentionDatesParse(t *testing.T) {
	rows := newGenerator().Attention()
	require.NotEmpty(t, rows)

	for _, row := range rows {
		date := rocdate.Parse(row.Date)
		require.False(t, rocdate.IsUndefined(date), "row date %q must parse", row.Date)
		require.False(t, date.After(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	}
}

func TestDispositionRowsParse(t *testing.T) {
	rows := newGenerator().Disposition()
	require.NotEmpty(t, rows)

	for _, row := range rows {
		require.GreaterOrEqual(t, len(row), 9)
		period, ok := row[6].(string)
		require.True(t, ok)
		start, end := rocdate.ParseRange(period)
		require.False(t, rocdate.IsUndefined(start))
		require.False(t, rocdate.IsUndefined(end))
		require.True(t, end.After(start))
	}
}

func TestNoiseRows(t *testing.T) {
	clean := newGenerator().Disposition()
	noisy := newGenerator(WithNoise(true)).Disposition()
	require.Equal(t, len(clean)+2, len(noisy))

	short := noisy[len(noisy)-2]
	require.Less(t, len(short), 9)
}

func TestServedFeedsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewServer(newGenerator(WithNoise(true))).NewRouter())
	defer srv.Close()

	client := fetch.NewClient(srv.URL+"/attention", srv.URL+"/disposition")

	attention, err := client.FetchAttention(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, attention)

	// Both disposition wire shapes must decode; the server alternates.
	for i := 0; i < 2; i++ {
		records, err := client.FetchDisposition(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, records)
		for _, rec := range records {
			require.NotEmpty(t, rec.Code)
		}
	}
}
