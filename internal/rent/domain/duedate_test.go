package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsPinsAnchorDay(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		months int
		want   time.Time
	}{
		{"plain add", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"two months", date(2024, time.January, 15), 2, date(2024, time.March, 15)},
		{"year rollover", date(2024, time.November, 15), 2, date(2025, time.January, 15)},
		{"clamp to leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"clamp to short february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"returns to anchor day after clamp", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"clamp to thirty day month", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"zero months normalizes", date(2024, time.June, 10), 0, date(2024, time.June, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.anchor, tc.months))
		})
	}
}

func TestDueSchedule(t *testing.T) {
	joining := date(2024, time.January, 15)

	mostRecent, next, ok := DueSchedule(joining, date(2024, time.March, 20))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.March, 15), mostRecent)
	assert.Equal(t, date(2024, time.April, 15), next)
}

func TestDueScheduleOnJoiningDay(t *testing.T) {
	joining := date(2024, time.January, 15)

	mostRecent, next, ok := DueSchedule(joining, joining)
	assert.True(t, ok)
	assert.Equal(t, joining, mostRecent)
	assert.Equal(t, date(2024, time.February, 15), next)
}

func TestDueScheduleBeforeJoining(t *testing.T) {
	joining := date(2024, time.June, 1)

	_, _, ok := DueSchedule(joining, date(2024, time.May, 20))
	assert.False(t, ok)
}

func TestDueScheduleClampedAnchor(t *testing.T) {
	joining := date(2024, time.January, 31)

	mostRecent, next, ok := DueSchedule(joining, date(2024, time.March, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, time.February, 29), mostRecent)
	assert.Equal(t, date(2024, time.March, 31), next)
}

func TestPastFirstBilling(t *testing.T) {
	joining := date(2024, time.January, 15)

	assert.False(t, PastFirstBilling(joining, date(2024, time.February, 14)))
	assert.True(t, PastFirstBilling(joining, date(2024, time.February, 15)))
	assert.True(t, PastFirstBilling(joining, date(2024, time.June, 1)))
}

func TestDaysPastDue(t *testing.T) {
	due := date(2024, time.May, 15)

	assert.Equal(t, 36, DaysPastDue(due, date(2024, time.June, 20)))
	assert.Equal(t, 0, DaysPastDue(due, due))
	assert.Equal(t, -1, DaysPastDue(due, date(2024, time.May, 14)))
}

func TestDaysPastDueStripsTimeOfDay(t *testing.T) {
	due := time.Date(2024, time.May, 15, 23, 30, 0, 0, time.UTC)
	today := time.Date(2024, time.May, 16, 0, 5, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysPastDue(due, today))
}

func TestNextPeriod(t *testing.T) {
	m, y := NextPeriod(4, 2024)
	assert.Equal(t, 5, m)
	assert.Equal(t, 2024, y)

	m, y = NextPeriod(12, 2024)
	assert.Equal(t, 1, m)
	assert.Equal(t, 2025, y)
}

func TestDateForPeriodClamps(t *testing.T) {
	anchor := date(2024, time.January, 31)

	assert.Equal(t, date(2024, time.April, 30), DateForPeriod(anchor, 4, 2024))
	assert.Equal(t, date(2024, time.May, 31), DateForPeriod(anchor, 5, 2024))
	assert.Equal(t, date(2024, time.February, 29), DateForPeriod(anchor, 2, 2024))
}
