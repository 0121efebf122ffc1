package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func openContract(start time.Time) models.Contract {
	return models.Contract{
		StartDate:   start,
		Status:      models.ContractStatusOpen,
		MonthlyWage: decimal.NewFromInt(300),
	}
}

func closedContract(start, end time.Time) models.Contract {
	c := openContract(start)
	c.EndDate = &end
	c.Status = models.ContractStatusClose
	return c
}

func TestTimelineSingleContract(t *testing.T) {
	timeline, err := NewTimeline(
		[]models.Contract{openContract(date(2024, 9, 1))},
		date(2025, 8, 31),
	)
	require.NoError(t, err)

	assert.Equal(t, date(2024, 9, 1), timeline.HireDate())
	assert.Equal(t, 12, timeline.ServiceMonths())
	assert.True(t, timeline.ServiceMonthsExact().Equal(decimal.NewFromInt(12)))
}

func TestTimelineRehireWithGap(t *testing.T) {
	// 18 months, then a six month gap, then 43 months of service
	contracts := []models.Contract{
		closedContract(date(2019, 1, 1), date(2020, 6, 30)),
		openContract(date(2021, 1, 1)),
	}
	timeline, err := NewTimeline(contracts, date(2024, 7, 31))
	require.NoError(t, err)

	require.Len(t, timeline.Segments, 2)
	assert.Equal(t, 61, timeline.ServiceMonths())
}

func TestTimelineMergesBackToBackContracts(t *testing.T) {
	contracts := []models.Contract{
		closedContract(date(2023, 1, 1), date(2023, 6, 30)),
		openContract(date(2023, 7, 1)),
	}
	timeline, err := NewTimeline(contracts, date(2023, 12, 31))
	require.NoError(t, err)

	require.Len(t, timeline.Segments, 1)
	assert.Equal(t, 12, timeline.ServiceMonths())
}

func TestTimelinePartialMonthRoundsUp(t *testing.T) {
	timeline, err := NewTimeline(
		[]models.Contract{openContract(date(2025, 1, 1))},
		date(2025, 2, 15),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, timeline.ServiceMonths())
	assert.True(t, timeline.ServiceMonthsExact().Equal(decimal.NewFromFloat(1.5)),
		"exact %s", timeline.ServiceMonthsExact())
}

func TestTimelineRejectsOverlap(t *testing.T) {
	contracts := []models.Contract{
		closedContract(date(2023, 1, 1), date(2023, 8, 31)),
		openContract(date(2023, 6, 1)),
	}
	_, err := NewTimeline(contracts, date(2023, 12, 31))
	assert.ErrorIs(t, err, ErrInvalidContractState)
}

func TestTimelineSkipsDraftsAndRejectsEmpty(t *testing.T) {
	draft := openContract(date(2023, 1, 1))
	draft.Status = models.ContractStatusDraft

	_, err := NewTimeline([]models.Contract{draft}, date(2023, 12, 31))
	assert.ErrorIs(t, err, ErrInvalidContractState)
}

func TestVacationDaysFullYears(t *testing.T) {
	timeline, err := NewTimeline(
		[]models.Contract{openContract(date(2022, 1, 1))},
		date(2024, 12, 31),
	)
	require.NoError(t, err)
	require.Equal(t, 36, timeline.ServiceMonths())

	// Three anniversary years: 15 + 16 + 17
	due := timeline.VacationDaysDue(nil)
	assert.True(t, due.Equal(decimal.NewFromInt(48)), "due %s", due)
	assert.True(t, timeline.BonoVacacionalDaysDue(nil).Equal(due))
}

func TestVacationDaysAfterPaidYears(t *testing.T) {
	timeline, err := NewTimeline(
		[]models.Contract{openContract(date(2022, 1, 1))},
		date(2024, 12, 31),
	)
	require.NoError(t, err)

	// First two anniversaries already paid, only year three remains
	due := timeline.VacationDaysDue(datePtr(2023, 12, 31))
	assert.True(t, due.Equal(decimal.NewFromInt(17)), "due %s", due)
}

func TestVacationDaysPaidUntilSkipsRehireGap(t *testing.T) {
	// Two years of service, a one-year gap, then two more. The third
	// service year was settled one calendar year after the gap opened
	contracts := []models.Contract{
		closedContract(date(2020, 1, 1), date(2021, 12, 31)),
		openContract(date(2023, 1, 1)),
	}
	timeline, err := NewTimeline(contracts, date(2024, 12, 31))
	require.NoError(t, err)
	require.Equal(t, 48, timeline.ServiceMonths())

	// 36 service months through the pay-out date leave only year four: 18
	// days, not the zero a calendar count across the gap would yield
	due := timeline.VacationDaysDue(datePtr(2023, 12, 31))
	assert.True(t, due.Equal(decimal.NewFromInt(18)), "due %s", due)
}

func TestVacationDaysFractionalYear(t *testing.T) {
	timeline, err := NewTimeline(
		[]models.Contract{openContract(date(2022, 1, 1))},
		date(2024, 6, 30),
	)
	require.NoError(t, err)
	require.Equal(t, 30, timeline.ServiceMonths())

	// 15 + 16 full years, plus 6/12 of the 17-day third year
	due := timeline.VacationDaysDue(nil)
	assert.True(t, due.Equal(decimal.NewFromFloat(39.5)), "due %s", due)
}

func TestVacationQuotaCapsAtThirty(t *testing.T) {
	assert.Equal(t, 15, vacationQuota(1))
	assert.Equal(t, 16, vacationQuota(2))
	assert.Equal(t, 30, vacationQuota(16))
	assert.Equal(t, 30, vacationQuota(25))
}

func TestPeriodDaysCommercialCalendar(t *testing.T) {
	cases := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"full 31-day month", date(2025, 8, 1), date(2025, 8, 31), 30},
		{"full february", date(2025, 2, 1), date(2025, 2, 28), 30},
		{"leap february", date(2024, 2, 1), date(2024, 2, 29), 30},
		{"mid-month to mid-month", date(2025, 1, 15), date(2025, 2, 14), 30},
		{"full year", date(2024, 1, 1), date(2024, 12, 31), 360},
		{"single day", date(2025, 3, 10), date(2025, 3, 10), 1},
		{"first half", date(2025, 4, 1), date(2025, 4, 15), 15},
		{"inverted period", date(2025, 5, 10), date(2025, 5, 1), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PeriodDays(tc.from, tc.to))
		})
	}
}
