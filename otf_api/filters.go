package otf_api

import "time"

// ClassFilter narrows a class list after fetch. Within one filter every set
// field must match (AND); a slice field matches when any of its values does.
// Multiple filters passed to ListClasses are applied as alternatives (OR).
//
// StartTimes entries are wall-clock values in "15:04" format, compared
// against the class's local start time.
type ClassFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	ClassTypes []ClassType
	DaysOfWeek []time.Weekday
	StartTimes []string
}

func (f ClassFilter) matches(c *Class) bool {
	start := c.Starts.Time

	if !f.StartDate.IsZero() && dateOf(start).Before(dateOf(f.StartDate)) {
		return false
	}
	if !f.EndDate.IsZero() && dateOf(start).After(dateOf(f.EndDate)) {
		return false
	}
	if len(f.ClassTypes) > 0 && !containsClassType(f.ClassTypes, c.Type) {
		return false
	}
	if len(f.DaysOfWeek) > 0 && !containsWeekday(f.DaysOfWeek, start.Weekday()) {
		return false
	}
	if len(f.StartTimes) > 0 && !containsString(f.StartTimes, start.Format("15:04")) {
		return false
	}
	return true
}

// filterClasses applies the filters with OR semantics across them, preserving
// the input order and dropping duplicates.
func filterClasses(classes []*Class, filters []ClassFilter) []*Class {
	if len(filters) == 0 {
		return classes
	}

	var out []*Class
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		for _, f := range filters {
			if f.matches(c) {
				if !seen[c.ClassUUID] {
					seen[c.ClassUUID] = true
					out = append(out, c)
				}
				break
			}
		}
	}
	return out
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func containsClassType(list []ClassType, v ClassType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsWeekday(list []time.Weekday, v time.Weekday) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
