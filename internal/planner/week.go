package planner

import "time"

const weekKeyLayout = "2006-01-02"

// GetWeekStart returns midnight of the Monday that starts t's week.
func GetWeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GetNextMonday returns midnight of the first Monday strictly after t.
func GetNextMonday(t time.Time) time.Time {
	return GetWeekStart(t).AddDate(0, 0, 7)
}

// WeekKey stamps a plan with the ISO date of its starting Monday.
func WeekKey(t time.Time) string {
	return GetWeekStart(t).Format(weekKeyLayout)
}

// ParseWeekKey accepts any date and normalises it to its week key.
func ParseWeekKey(s string) (string, error) {
	t, err := time.Parse(weekKeyLayout, s)
	if err != nil {
		return "", err
	}
	return WeekKey(t), nil
}

// DayDate returns the calendar date of a plan cell. Week 0 day 0 is the
// Monday named by weekKey.
func DayDate(weekKey string, week, day int) (time.Time, error) {
	start, err := time.Parse(weekKeyLayout, weekKey)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, week*7+day), nil
}
