package mortgage

import (
	"sort"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
)

// tick is one distinct date on the merged timeline and what falls due on it.
type tick struct {
	Date     time.Time
	Events   []events.Event
	Interest bool
	Payment  bool
}

// buildTimeline merges the scheduled payment days, scheduled interest days
// and timeline events into ascending, distinct ticks. Events keep their
// original relative order within a tick. Events dated before the start date
// are moved onto it.
func buildTimeline(cfg LoanConfiguration, evs []events.Event, policy Policy) []tick {
	start := datetime.Truncate(cfg.StartDate)
	byDate := make(map[time.Time]*tick)
	get := func(date time.Time) *tick {
		t, ok := byDate[date]
		if !ok {
			t = &tick{Date: date}
			byDate[date] = t
		}
		return t
	}

	horizon := cfg.TotalMonths() + policy.HorizonBufferMonths
	for month := 0; month <= horizon; month++ {
		if paymentDate := datetime.MonthDate(start, month, cfg.PaymentDay); paymentDate.After(start) {
			get(paymentDate).Payment = true
		}
		if interestDate := datetime.MonthDate(start, month, cfg.InterestDay); interestDate.After(start) {
			get(interestDate).Interest = true
		}
	}

	for _, event := range events.SortStable(evs) {
		date := datetime.Truncate(event.Date)
		if date.Before(start) {
			date = start
		}
		t := get(date)
		t.Events = append(t.Events, event)
	}

	ticks := make([]tick, 0, len(byDate))
	for _, t := range byDate {
		ticks = append(ticks, *t)
	}
	sort.Slice(ticks, func(i, j int) bool {
		return ticks[i].Date.Before(ticks[j].Date)
	})
	return ticks
}

// firstInterestDate is the earliest scheduled interest day after start.
func firstInterestDate(cfg LoanConfiguration) time.Time {
	start := datetime.Truncate(cfg.StartDate)
	date := datetime.MonthDate(start, 0, cfg.InterestDay)
	if !date.After(start) {
		date = datetime.MonthDate(start, 1, cfg.InterestDay)
	}
	return date
}

// accrualStart is the date the first interest charge accrues from.
func accrualStart(cfg LoanConfiguration, policy Policy) time.Time {
	if !cfg.IsExistingMortgage {
		return datetime.Truncate(cfg.StartDate)
	}
	return datetime.MonthDate(firstInterestDate(cfg), -policy.ExistingLookbackMonths, cfg.InterestDay)
}

// termEnd is the payment date that completes the contractual term.
func termEnd(cfg LoanConfiguration) time.Time {
	return datetime.MonthDate(datetime.Truncate(cfg.StartDate), cfg.TotalMonths(), cfg.PaymentDay)
}
