/*
daytype.go - Calendar-day classification

Day type is a pure function of the civil date and an external holiday set.
Holidays win over everything: a holiday falling on a Sunday is HOLIDAY, and
both pay the full 100% override anyway.
*/
package jornada

import "time"

// ClassifyDay returns the day type for a civil date given its holiday flag.
func ClassifyDay(d CivilDate, isHoliday bool) DayType {
	if isHoliday {
		return DayHoliday
	}
	switch d.Weekday() {
	case time.Saturday:
		return DaySaturday
	case time.Sunday:
		return DaySunday
	default:
		return DayWeekday
	}
}

// FullOverride reports whether the whole day pays at the 100% rate regardless
// of the ordinary jornada allowance. Saturday is handled separately because
// only the portion from 13:00 is overridden.
func (t DayType) FullOverride() bool {
	return t == DaySunday || t == DayHoliday
}
