package domain

import "time"

// Normalize strips the time-of-day and pins the date to midnight UTC.
// All due-date comparisons operate on normalized dates.
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths performs a calendar month add anchored on the anchor's
// day-of-month. When the target month is shorter, the day is clamped to
// the last day of that month; the next step returns to the anchor day.
func AddMonths(anchor time.Time, months int) time.Time {
	anchor = Normalize(anchor)
	y, m, _ := anchor.Date()

	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	if total < 0 {
		year = y + (total-11)/12
		month = time.Month((total%12+12)%12 + 1)
	}

	return DateForPeriod(anchor, int(month), year)
}

// DateForPeriod combines a billing period with the anchor's day-of-month,
// clamped to the last day of the period's month.
func DateForPeriod(anchor time.Time, month, year int) time.Time {
	day := Normalize(anchor).Day()
	if last := daysIn(month, year); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DueSchedule walks the monthly due-date sequence anchored at joining and
// returns the most recent due date not after reference plus the one that
// follows it. ok is false when reference precedes the joining date.
func DueSchedule(joining, reference time.Time) (mostRecent, next time.Time, ok bool) {
	joining = Normalize(joining)
	reference = Normalize(reference)
	if reference.Before(joining) {
		return time.Time{}, time.Time{}, false
	}

	step := 0
	for {
		candidate := AddMonths(joining, step+1)
		if candidate.After(reference) {
			return AddMonths(joining, step), candidate, true
		}
		step++
	}
}

// PastFirstBilling reports whether the tenant has reached its first
// billing cycle: one calendar month after the joining date.
func PastFirstBilling(joining, reference time.Time) bool {
	return !Normalize(reference).Before(AddMonths(joining, 1))
}

// DaysPastDue returns the whole days elapsed since the due date.
// Zero or negative means the due date has not passed.
func DaysPastDue(due, today time.Time) int {
	return int(Normalize(today).Sub(Normalize(due)).Hours() / 24)
}

// NextPeriod returns the billing period immediately after (month, year).
func NextPeriod(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
