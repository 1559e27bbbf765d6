package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
)

// Nigerian public holidays with fixed dates. Movable religious holidays
// are announced by the government each year and are not modelled here.
var (
	ngNewYear = &cal.Holiday{
		Name:  "New Year's Day",
		Month: time.January,
		Day:   1,
		Func:  cal.CalcDayOfMonth,
	}
	ngWorkersDay = &cal.Holiday{
		Name:  "Workers' Day",
		Month: time.May,
		Day:   1,
		Func:  cal.CalcDayOfMonth,
	}
	ngDemocracyDay = &cal.Holiday{
		Name:  "Democracy Day",
		Month: time.June,
		Day:   12,
		Func:  cal.CalcDayOfMonth,
	}
	ngIndependenceDay = &cal.Holiday{
		Name:  "Independence Day",
		Month: time.October,
		Day:   1,
		Func:  cal.CalcDayOfMonth,
	}
	ngChristmasDay = &cal.Holiday{
		Name:  "Christmas Day",
		Month: time.December,
		Day:   25,
		Func:  cal.CalcDayOfMonth,
	}
	ngBoxingDay = &cal.Holiday{
		Name:  "Boxing Day",
		Month: time.December,
		Day:   26,
		Func:  cal.CalcDayOfMonth,
	}
)

// create once at init
var inspectionCal = cal.NewBusinessCalendar()

func init() {
	// Inspections run Monday through Saturday.
	inspectionCal.SetWorkday(time.Saturday, true)
	inspectionCal.AddHoliday(
		ngNewYear,
		ngWorkersDay,
		ngDemocracyDay,
		ngIndependenceDay,
		ngChristmasDay,
		ngBoxingDay,
	)
}

// IsBookableDay reports whether inspections can be scheduled on t's date:
// any day except Sundays and public holidays.
func IsBookableDay(t time.Time) bool {
	return inspectionCal.IsWorkday(t)
}
