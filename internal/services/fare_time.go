package services

import (
	"strings"
	"time"
)

// DateLayout формат даты подачи и праздничных дней
const DateLayout = "2006-01-02"

var pickupLayouts = []string{"3:04 PM", "3:04PM", "3:04:05 PM"}

var windowLayouts = []string{"15:04:05", "15:04"}

// ParsePickupTime разбирает время подачи в 12-часовом формате с AM/PM
func ParsePickupTime(value string) (time.Time, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	// 12-часовой формат: час 0 недопустим, хотя time.Parse его принимает
	if hour, _, found := strings.Cut(value, ":"); !found || strings.TrimLeft(hour, "0") == "" {
		return time.Time{}, false
	}
	for _, layout := range pickupLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePickupDate разбирает дату подачи в формате YYYY-MM-DD
func ParsePickupDate(value string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseClock24(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InTimeWindow проверяет попадание времени подачи в окно [start, end].
// Окно с end <= start переходит через полночь. Ошибка разбора означает "не попадает".
func InTimeWindow(pickup, start, end string) bool {
	p, ok := ParsePickupTime(pickup)
	if !ok {
		return false
	}
	s, ok := parseClock24(start)
	if !ok {
		return false
	}
	e, ok := parseClock24(end)
	if !ok {
		return false
	}

	if !e.After(s) {
		e = e.Add(24 * time.Hour)
		if p.Before(s) {
			p = p.Add(24 * time.Hour)
		}
	}

	return !p.Before(s) && !p.After(e)
}
