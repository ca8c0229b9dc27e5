package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Set of weekdays on which a RouteLeg may depart. Bit i stands for time.Weekday(i).
type WeekdaySet uint8

const EveryDay WeekdaySet = 1<<7 - 1

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// WeekdaysOf returns the set containing exactly the given weekdays.
func WeekdaysOf(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) IsEmpty() bool { return s&EveryDay == 0 }

// String lists the permitted weekdays Monday first, or "daily" for all seven.
func (s WeekdaySet) String() string {
	if s&EveryDay == EveryDay {
		return "daily"
	}
	if s.IsEmpty() {
		return "never"
	}

	names := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if s.Contains(d) {
			names = append(names, d.String()[:3])
		}
	}
	return strings.Join(names, ",")
}

// ParseWeekdays reads the Weekday column of a route catalogue.
//
// Accepted forms:
//   - "", "0", "*", "daily", "all": every day
//   - "never", "none": no day at all
//   - a single ISO weekday number 1-7 (1 = Monday, 7 = Sunday)
//   - a comma, slash or space separated list of ISO numbers or day names ("1,3,5", "Mon/Thu")
func ParseWeekdays(raw string) (WeekdaySet, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "0", "*", "daily", "all", "everyday":
		return EveryDay, nil
	case "never", "none":
		return 0, nil
	}

	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == ';'
	})

	var set WeekdaySet
	for _, f := range fields {
		if d, ok := weekdayNames[f]; ok {
			set |= WeekdaysOf(d)
			continue
		}

		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > 7 {
			return 0, fmt.Errorf("parse weekdays %q: unknown weekday %q", raw, f)
		}
		set |= WeekdaysOf(time.Weekday(n % 7))
	}

	if set.IsEmpty() {
		return 0, fmt.Errorf("parse weekdays %q: no weekday given", raw)
	}
	return set, nil
}
