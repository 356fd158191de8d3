package resolver

import "github.com/quillhorn/bondengine/internal/convention"

func parseDayCountOverride(s string) (convention.DayCount, error)    { return convention.ParseDayCount(s) }
func parseFrequencyOverride(s string) (convention.Frequency, error)  { return convention.ParseFrequency(s) }
func parseBusinessDayOverride(s string) (convention.BusinessDayConvention, error) {
	return convention.ParseBusinessDayConvention(s)
}
func parseCalendarOverride(s string) (convention.Calendar, error) { return convention.ParseCalendar(s) }
