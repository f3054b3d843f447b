package billing

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, time.Minute), mr
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	summary := Summary{
		Year:     2025,
		Month:    8,
		Selector: PeriodBoth,
		Results: []RunResult{
			{RunID: "run-1", ChargeType: ChargeHousing, Year: 2025, Month: 8, Written: 12},
		},
		Failures: map[ChargeType]string{ChargeBusCard: "no charge assignments exist"},
		Written:  12,
	}
	require.NoError(t, cache.Store(ctx, summary))

	got, err := cache.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, 2025, got.Year)
	require.Equal(t, PeriodBoth, got.Selector)
	require.Len(t, got.Results, 1)
	require.Equal(t, "run-1", got.Results[0].RunID)
	require.Contains(t, got.Failures, ChargeBusCard)
}

func TestSummaryCacheEmpty(t *testing.T) {
	cache, _ := testCache(t)
	_, err := cache.Latest(context.Background())
	require.ErrorIs(t, err, ErrNoSummary)
}

func TestSummaryCacheExpiry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, Summary{Year: 2025, Month: 8}))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Latest(ctx)
	require.ErrorIs(t, err, ErrNoSummary)
}

func TestSummaryCacheNilClient(t *testing.T) {
	var cache *SummaryCache
	require.NoError(t, cache.Store(context.Background(), Summary{}))
	_, err := cache.Latest(context.Background())
	require.ErrorIs(t, err, ErrNoSummary)
}
