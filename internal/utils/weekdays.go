package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a single day label or index (0=Sunday, 6=Saturday)
func ParseWeekday(s string) (time.Weekday, error) {
	part := strings.TrimSpace(strings.ToLower(s))
	if wd, ok := dayMap[part]; ok {
		return wd, nil
	}
	num, err := strconv.Atoi(part)
	if err == nil && num >= 0 && num <= 6 {
		return time.Weekday(num), nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// ParseDayLabels converts selected day labels into a sorted set of weekday indices
func ParseDayLabels(labels []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool)
	var weekdays []time.Weekday
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		wd, err := ParseWeekday(label)
		if err != nil {
			return nil, err
		}
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}
	sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })
	return weekdays, nil
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	return ParseDayLabels(strings.Split(s, ","))
}

// FormatWeekdays renders weekdays as short labels, e.g. "Mon,Wed"
func FormatWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, wd := range days {
		parts = append(parts, wd.String()[:3])
	}
	return strings.Join(parts, ",")
}
