package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HLomotey/homa-suite-sub003/internal/billing"
)

func TestFormatSummary(t *testing.T) {
	summary := billing.Summary{
		Year:     2025,
		Month:    8,
		Selector: billing.PeriodBoth,
		Results: []billing.RunResult{
			{ChargeType: billing.ChargeHousing, Written: 1250, Skipped: 2, Schedules: 0},
			{ChargeType: billing.ChargeSecurityDeposit, Written: 40, Schedules: 120},
		},
		Failures: map[billing.ChargeType]string{
			billing.ChargeBusCard: "no charge assignments exist",
		},
		Written: 1290,
		Skipped: 2,
	}

	out := FormatSummary(summary)
	require.Contains(t, out, "billing run 2025-08 (both)")
	require.Contains(t, out, "HOUSING")
	require.Contains(t, out, "written=1,250")
	require.Contains(t, out, "schedules=120")
	require.Contains(t, out, "BUS_CARD")
	require.Contains(t, out, "FAILED: no charge assignments exist")
	require.Contains(t, out, "total written=1,290 skipped=2")
}

func TestFormatSummaryNoResults(t *testing.T) {
	out := FormatSummary(billing.Summary{Year: 2026, Month: 1, Selector: billing.PeriodFirst})
	require.Contains(t, out, "billing run 2026-01 (first)")
	require.Contains(t, out, "total written=0 skipped=0")
}
