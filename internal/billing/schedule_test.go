package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGenerateScheduleCadenceFromTheTenth(t *testing.T) {
	start := time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)
	items := GenerateSchedule(decimal.NewFromInt(300), 3, start)
	require.Len(t, items, 3)

	// Start on the 10th: first cutoff is the 22nd of the same month, then
	// alternating 7th/22nd.
	require.Equal(t, time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC), items[0].DeductionDate)
	require.Equal(t, time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC), items[1].DeductionDate)
	require.Equal(t, time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC), items[2].DeductionDate)

	for i, item := range items {
		require.Equal(t, i+1, item.Sequence)
		day := item.DeductionDate.Day()
		require.True(t, day == 7 || day == 22, "deduction day %d", day)
		require.Equal(t, item.DeductionDate.Format("2006-01"), item.PayrollPeriod)
		if i > 0 {
			require.True(t, item.DeductionDate.After(items[i-1].DeductionDate), "dates strictly increasing")
		}
	}
}

func TestGenerateScheduleFirstDateBranches(t *testing.T) {
	cases := []struct {
		name  string
		start string
		first string
	}{
		{"on or before the 7th", "2025-08-07", "2025-08-07"},
		{"between the 8th and the 22nd", "2025-08-08", "2025-08-22"},
		{"after the 22nd rolls to next month", "2025-08-23", "2025-09-07"},
		{"late december rolls into january", "2025-12-28", "2026-01-07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := GenerateSchedule(decimal.NewFromInt(100), 1, day(t, tc.start))
			require.Len(t, items, 1)
			require.Equal(t, day(t, tc.first), items[0].DeductionDate)
		})
	}
}

func TestGenerateScheduleSumConservation(t *testing.T) {
	totals := []string{"500.00", "100.01", "333.33", "1.00", "999.99"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		items := GenerateSchedule(total, 3, day(t, "2025-08-01"))
		require.Len(t, items, 3)

		sum := decimal.Zero
		for _, item := range items {
			sum = sum.Add(item.ScheduledAmount)
		}
		// Per-item rounding may drift by up to one cent per item after the
		// first; the remainder is deliberately not re-balanced.
		tolerance := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(2))
		require.True(t, sum.Sub(total).Abs().LessThanOrEqual(tolerance),
			"total %s, scheduled sum %s", total, sum)
	}
}

func TestGenerateScheduleEqualInstallments(t *testing.T) {
	items := GenerateSchedule(decimal.RequireFromString("500.00"), 3, day(t, "2025-08-01"))
	require.Len(t, items, 3)
	for _, item := range items {
		require.True(t, item.ScheduledAmount.Equal(decimal.RequireFromString("166.67")))
	}
}

func TestGenerateScheduleZeroAndNegativeAmounts(t *testing.T) {
	require.Empty(t, GenerateSchedule(decimal.Zero, 3, day(t, "2025-08-01")))
	require.Empty(t, GenerateSchedule(decimal.NewFromInt(-5), 3, day(t, "2025-08-01")))
}

func TestInstallmentCountPerChargeType(t *testing.T) {
	require.Equal(t, 3, InstallmentCount(ChargeSecurityDeposit, 0))
	require.Equal(t, 1, InstallmentCount(ChargeBusCard, 0))
	require.Equal(t, 2, InstallmentCount(ChargeBusCard, 2))
	require.Equal(t, 0, InstallmentCount(ChargeHousing, 0))
	require.Equal(t, 0, InstallmentCount(ChargeTransportation, 0))
}
