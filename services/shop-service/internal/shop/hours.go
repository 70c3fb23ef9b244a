package shop

import (
	"strconv"
	"strings"
)

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// clockMinutes parses a strict HH:MM value.
func clockMinutes(v string) (int, bool) {
	if len(v) != 5 || v[2] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(v[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(v[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidateHours checks a weekly schedule. Keys are lower-cased weekday names;
// a day that is not closed needs open < close. Closed days keep no times.
func ValidateHours(in map[string]DayHours) (map[string]DayHours, *ValidationError) {
	out := make(map[string]DayHours, len(in))
	verr := &ValidationError{}
	for rawDay, h := range in {
		day := strings.ToLower(strings.TrimSpace(rawDay))
		if !isWeekday(day) {
			verr.add(rawDay, "Dia da semana inválido")
			continue
		}
		if h.Closed {
			out[day] = DayHours{Closed: true}
			continue
		}
		open, okOpen := clockMinutes(strings.TrimSpace(h.Open))
		closing, okClose := clockMinutes(strings.TrimSpace(h.Close))
		switch {
		case !okOpen || !okClose:
			verr.add(day, "Horário inválido (use HH:MM)")
		case open >= closing:
			verr.add(day, "Abertura deve ser antes do fechamento")
		default:
			out[day] = DayHours{Open: strings.TrimSpace(h.Open), Close: strings.TrimSpace(h.Close)}
		}
	}
	if verr := verr.orNil(); verr != nil {
		return nil, verr
	}
	return out, nil
}
