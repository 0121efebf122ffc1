package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
)

// Vacation day quotas per LOTTT: both vacation and its bonus start at 15
// days on the first anniversary and grow one day per year up to 30.
const (
	vacationBaseDays = 15
	vacationCapDays  = 30
)

var (
	thirty = decimal.NewFromInt(30)
	twelve = decimal.NewFromInt(12)
)

// Segment is one continuous stretch of service.
type Segment struct {
	Start time.Time
	End   time.Time
}

// Timeline derives service-time metrics from an employee's contract
// history. Gaps between contracts do not count as service; for rehires the
// metrics are the arithmetic sum over segments.
type Timeline struct {
	Segments []Segment
	CutOff   time.Time
}

// NewTimeline builds a timeline from the contract history up to cutOff.
// Contracts must be ordered by start date; segments still open at cutOff
// are truncated there. Overlapping contracts violate timeline integrity.
func NewTimeline(contracts []models.Contract, cutOff time.Time) (*Timeline, error) {
	cutOff = truncateDate(cutOff)
	t := &Timeline{CutOff: cutOff}
	var prevEnd time.Time
	for _, c := range contracts {
		if c.Status == models.ContractStatusDraft {
			continue
		}
		start := truncateDate(c.StartDate)
		if start.After(cutOff) {
			continue
		}
		end := cutOff
		if c.EndDate != nil && truncateDate(*c.EndDate).Before(cutOff) {
			end = truncateDate(*c.EndDate)
		}
		if len(t.Segments) > 0 && !start.After(prevEnd) {
			return nil, ErrInvalidContractState
		}
		// Merge contracts that touch without a gap (back-to-back renewals).
		if len(t.Segments) > 0 && start.Equal(prevEnd.AddDate(0, 0, 1)) {
			t.Segments[len(t.Segments)-1].End = end
		} else {
			t.Segments = append(t.Segments, Segment{Start: start, End: end})
		}
		prevEnd = end
	}
	if len(t.Segments) == 0 {
		return nil, ErrInvalidContractState
	}
	return t, nil
}

// HireDate is the start of the first service segment.
func (t *Timeline) HireDate() time.Time {
	return t.Segments[0].Start
}

// ServiceMonths is the whole-month service count summed over segments. A
// fractional remainder of one day or more rounds up, matching the statute's
// day-quota accrual.
func (t *Timeline) ServiceMonths() int {
	total := 0
	for _, s := range t.Segments {
		whole, leftover := monthSpan(s.Start, s.End)
		total += whole
		if leftover > 0 {
			total++
		}
	}
	return total
}

// ServiceMonthsExact is the month count with the fractional remainder kept
// as days over the 30-day commercial month, for display.
func (t *Timeline) ServiceMonthsExact() decimal.Decimal {
	total := decimal.Zero
	for _, s := range t.Segments {
		whole, leftover := monthSpan(s.Start, s.End)
		total = total.Add(decimal.NewFromInt(int64(whole)))
		if leftover > 0 {
			total = total.Add(decimal.NewFromInt(int64(leftover)).Div(thirty))
		}
	}
	return total.Round(2)
}

// serviceMonthsUntil counts whole service months accumulated up to asOf,
// truncating the segments there and skipping employment gaps.
func (t *Timeline) serviceMonthsUntil(asOf time.Time) int {
	asOf = truncateDate(asOf)
	total := 0
	for _, s := range t.Segments {
		if s.Start.After(asOf) {
			break
		}
		end := s.End
		if asOf.Before(end) {
			end = asOf
		}
		whole, _ := monthSpan(s.Start, end)
		total += whole
	}
	return total
}

// MonthsSince counts whole months elapsed from event to asOf.
func (t *Timeline) MonthsSince(event, asOf time.Time) int {
	if asOf.Before(event) {
		return 0
	}
	whole, _ := monthSpan(truncateDate(event), truncateDate(asOf))
	return whole
}

// VacationDaysDue returns the vacation days owed at cut-off: the full
// quota for every elapsed anniversary year after paidUntil, plus the
// current fractional year pro-rated by months.
func (t *Timeline) VacationDaysDue(paidUntil *time.Time) decimal.Decimal {
	return t.anniversaryDaysDue(paidUntil)
}

// BonoVacacionalDaysDue mirrors VacationDaysDue with the bonus quota,
// which follows the same 15 + 1/yr schedule.
func (t *Timeline) BonoVacacionalDaysDue(paidUntil *time.Time) decimal.Decimal {
	return t.anniversaryDaysDue(paidUntil)
}

func (t *Timeline) anniversaryDaysDue(paidUntil *time.Time) decimal.Decimal {
	serviceMonths := t.ServiceMonths()
	fullYears := serviceMonths / 12
	fracMonths := serviceMonths % 12

	// Paid years count on the same gap-excluding basis as fullYears, so a
	// rehire gap before paidUntil does not inflate what was settled.
	paidYears := 0
	if paidUntil != nil {
		paidYears = t.serviceMonthsUntil(*paidUntil) / 12
	}

	due := decimal.Zero
	for year := paidYears + 1; year <= fullYears; year++ {
		due = due.Add(decimal.NewFromInt(int64(vacationQuota(year))))
	}
	if fracMonths > 0 {
		quota := decimal.NewFromInt(int64(vacationQuota(fullYears + 1)))
		due = due.Add(quota.Mul(decimal.NewFromInt(int64(fracMonths))).Div(twelve))
	}
	return due
}

func vacationQuota(year int) int {
	quota := vacationBaseDays + (year - 1)
	if quota > vacationCapDays {
		quota = vacationCapDays
	}
	return quota
}

// PeriodDays counts the days in [from, to] inclusive on the 30/360
// commercial calendar: every full month is 30 days regardless of its
// calendar length.
func PeriodDays(from, to time.Time) int {
	from, to = truncateDate(from), truncateDate(to)
	if to.Before(from) {
		return 0
	}
	d1 := from.Day()
	if d1 > 30 {
		d1 = 30
	}
	d2 := to.Day()
	if d2 == 31 || isLastOfFebruary(to) {
		d2 = 30
	}
	y1, m1 := from.Year(), int(from.Month())
	y2, m2 := to.Year(), int(to.Month())
	return (y2-y1)*360 + (m2-m1)*30 + (d2 - d1) + 1
}

// monthSpan returns the whole months in [start, end] inclusive and the
// leftover days past the last whole month.
func monthSpan(start, end time.Time) (whole int, leftover int) {
	if end.Before(start) {
		return 0, 0
	}
	whole = (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	for whole > 0 && end.Before(start.AddDate(0, whole, -1)) {
		whole--
	}
	if !end.Before(start.AddDate(0, whole+1, -1)) {
		whole++
	}
	rest := start.AddDate(0, whole, 0)
	if rest.After(end) {
		return whole, 0
	}
	return whole, PeriodDays(rest, end)
}

func isLastOfFebruary(d time.Time) bool {
	return d.Month() == time.February && d.AddDate(0, 0, 1).Month() == time.March
}

func truncateDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
