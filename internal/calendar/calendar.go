package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Calendar maps calendar dates to working/non-working and steps forward or
// backward by working days. At least one weekday must be marked working.
type Calendar struct {
	workingDays map[time.Weekday]bool
	holidays    map[Date]bool
}

// defaultWorkingDays is Monday through Friday.
func defaultWorkingDays() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}
}

// NewWithYearRange builds a calendar with Mon-Fri working days and US
// federal holidays synthesized for every year in [y0, y1] inclusive.
func NewWithYearRange(y0, y1 int) *Calendar {
	c := &Calendar{
		workingDays: defaultWorkingDays(),
		holidays:    make(map[Date]bool),
	}
	c.AddUSHolidaysRange(y0, y1)
	return c
}

// New builds an empty calendar with Mon-Fri working days and no holidays.
func New() *Calendar {
	return &Calendar{
		workingDays: defaultWorkingDays(),
		holidays:    make(map[Date]bool),
	}
}

// AddUSHolidaysRange adds the standard US federal holiday set for every
// year in [y0, y1] inclusive.
func (c *Calendar) AddUSHolidaysRange(y0, y1 int) {
	for y := y0; y <= y1; y++ {
		c.AddUSHolidays(y)
	}
}

// AddUSHolidays adds the standard US federal holiday set for a single year:
// New Year, MLK Day (3rd Mon Jan), Presidents' Day (3rd Mon Feb), Memorial
// Day (last Mon May), Independence Day, Labor Day (1st Mon Sep), Columbus
// Day (2nd Mon Oct), Veterans Day, Thanksgiving (4th Thu Nov), Christmas.
func (c *Calendar) AddUSHolidays(year int) {
	c.AddHoliday(NewDate(year, time.January, 1))
	c.AddHoliday(mustNthWeekday(year, time.January, time.Monday, 3))
	c.AddHoliday(mustNthWeekday(year, time.February, time.Monday, 3))
	c.AddHoliday(mustLastWeekday(year, time.May, time.Monday))
	c.AddHoliday(NewDate(year, time.July, 4))
	c.AddHoliday(mustNthWeekday(year, time.September, time.Monday, 1))
	c.AddHoliday(mustNthWeekday(year, time.October, time.Monday, 2))
	c.AddHoliday(NewDate(year, time.November, 11))
	c.AddHoliday(mustNthWeekday(year, time.November, time.Thursday, 4))
	c.AddHoliday(NewDate(year, time.December, 25))
}

// NthWeekday returns the date of the n-th (1-indexed) occurrence of weekday
// in the given month/year. It errors if the month has fewer than n
// occurrences of that weekday.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) (Date, error) {
	if n < 1 {
		return 0, fmt.Errorf("calendar: nth weekday requires n >= 1, got %d", n)
	}
	first := NewDate(year, month, 1)
	offset := int(weekday - first.Weekday())
	if offset < 0 {
		offset += 7
	}
	result := first.AddDays(offset + (n-1)*7)
	if result.Time().Month() != month {
		return 0, fmt.Errorf("calendar: %s has no %d-th %s", month, n, weekday)
	}
	return result, nil
}

// LastWeekday returns the date of the last occurrence of weekday in the
// given month/year.
func LastWeekday(year int, month time.Month, weekday time.Weekday) (Date, error) {
	next := month + 1
	nextYear := year
	if next > time.December {
		next = time.January
		nextYear++
	}
	lastOfMonth := NewDate(nextYear, next, 1).AddDays(-1)
	offset := int(lastOfMonth.Weekday() - weekday)
	if offset < 0 {
		offset += 7
	}
	return lastOfMonth.AddDays(-offset), nil
}

func mustNthWeekday(year int, month time.Month, weekday time.Weekday, n int) Date {
	d, err := NthWeekday(year, month, weekday, n)
	if err != nil {
		panic(err)
	}
	return d
}

func mustLastWeekday(year int, month time.Month, weekday time.Weekday) Date {
	d, err := LastWeekday(year, month, weekday)
	if err != nil {
		panic(err)
	}
	return d
}

// IsAvailable reports whether d is a working weekday and not a holiday.
func (c *Calendar) IsAvailable(d Date) bool {
	return c.workingDays[d.Weekday()] && !c.holidays[d]
}

// NextAvailable returns the smallest date strictly greater than d that is available.
func (c *Calendar) NextAvailable(d Date) Date {
	cur := d.AddDays(1)
	for !c.IsAvailable(cur) {
		cur = cur.AddDays(1)
	}
	return cur
}

// PrevAvailable returns the largest date strictly less than d that is available.
func (c *Calendar) PrevAvailable(d Date) Date {
	cur := d.AddDays(-1)
	for !c.IsAvailable(cur) {
		cur = cur.AddDays(-1)
	}
	return cur
}

// FindNextAvailable advances day-by-day from d, counting only available
// days, and returns the date on which the n-th available day lands. n=0
// returns d unchanged.
func (c *Calendar) FindNextAvailable(d Date, n int64) Date {
	cur := d
	var count int64
	for count < n {
		cur = cur.AddDays(1)
		if c.IsAvailable(cur) {
			count++
		}
	}
	return cur
}

// FindPrevAvailable is the symmetric backward counterpart of FindNextAvailable.
func (c *Calendar) FindPrevAvailable(d Date, n int64) Date {
	cur := d
	var count int64
	for count < n {
		cur = cur.AddDays(-1)
		if c.IsAvailable(cur) {
			count++
		}
	}
	return cur
}

// CountAvailableDays returns the number of available days in the inclusive
// range [a, b]; 0 if a > b.
func (c *Calendar) CountAvailableDays(a, b Date) int64 {
	if a > b {
		return 0
	}
	var count int64
	for d := a; d <= b; d++ {
		if c.IsAvailable(d) {
			count++
		}
	}
	return count
}

// AvailableDaysInRange enumerates the available days in the inclusive range
// [a, b]; its length equals CountAvailableDays(a, b).
func (c *Calendar) AvailableDaysInRange(a, b Date) []Date {
	if a > b {
		return nil
	}
	out := make([]Date, 0, b-a+1)
	for d := a; d <= b; d++ {
		if c.IsAvailable(d) {
			out = append(out, d)
		}
	}
	return out
}

// AddHoliday marks d as a non-working holiday.
func (c *Calendar) AddHoliday(d Date) {
	c.holidays[d] = true
}

// AddHolidays marks every date in ds as a non-working holiday.
func (c *Calendar) AddHolidays(ds []Date) {
	for _, d := range ds {
		c.AddHoliday(d)
	}
}

// AddRecurringHoliday adds the same month/day holiday for every year in
// [y0, y1] inclusive (e.g. July 4th every year).
func (c *Calendar) AddRecurringHoliday(month time.Month, day, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		c.AddHoliday(NewDate(y, month, day))
	}
}

// AddRecurringWeekdayHoliday adds the n-th occurrence of weekday in month
// as a holiday for every year in [y0, y1] inclusive. n must be >= 1; use
// AddRecurringLastWeekdayHoliday for "last occurrence" holidays.
func (c *Calendar) AddRecurringWeekdayHoliday(month time.Month, weekday time.Weekday, n, y0, y1 int) error {
	for y := y0; y <= y1; y++ {
		d, err := NthWeekday(y, month, weekday, n)
		if err != nil {
			return err
		}
		c.AddHoliday(d)
	}
	return nil
}

// AddRecurringLastWeekdayHoliday adds the last occurrence of weekday in
// month as a holiday for every year in [y0, y1] inclusive (e.g. Memorial Day).
func (c *Calendar) AddRecurringLastWeekdayHoliday(month time.Month, weekday time.Weekday, y0, y1 int) error {
	for y := y0; y <= y1; y++ {
		d, err := LastWeekday(y, month, weekday)
		if err != nil {
			return err
		}
		c.AddHoliday(d)
	}
	return nil
}

// SetWorkingDays replaces the set of working weekdays. Fails if days is empty.
func (c *Calendar) SetWorkingDays(days []time.Weekday) error {
	if len(days) == 0 {
		return fmt.Errorf("calendar: at least one weekday must be working")
	}
	next := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		next[d] = true
	}
	c.workingDays = next
	return nil
}

// WorkingDays returns the set of working weekdays, sorted Sun..Sat.
func (c *Calendar) WorkingDays() []time.Weekday {
	out := make([]time.Weekday, 0, len(c.workingDays))
	for d := range c.workingDays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Holidays returns the holiday set, sorted ascending.
func (c *Calendar) Holidays() []Date {
	out := make([]Date, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Config is the canonical serializable form of a Calendar: a sorted
// de-duplicated list of working weekdays and a sorted de-duplicated list of
// holiday dates. Calendar and Config round-trip totally through ToConfig/FromConfig.
type Config struct {
	WorkingDays []time.Weekday `json:"-"`
	Holidays    []Date         `json:"-"`
}

// ToConfig converts c into its canonical serializable form.
func (c *Calendar) ToConfig() Config {
	return Config{WorkingDays: c.WorkingDays(), Holidays: c.Holidays()}
}

// FromConfig reconstructs a Calendar from its canonical form. Fails if
// WorkingDays is empty.
func FromConfig(cfg Config) (*Calendar, error) {
	c := &Calendar{holidays: make(map[Date]bool)}
	if err := c.SetWorkingDays(cfg.WorkingDays); err != nil {
		return nil, err
	}
	c.AddHolidays(cfg.Holidays)
	return c, nil
}
