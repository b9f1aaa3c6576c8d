package timezone

import (
	"strings"
	"sync"
	"time"
)

const DefaultTimezone = "Europe/Warsaw"

// Layouts accepted for local date-times sent by clients without an offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var (
	mu      sync.RWMutex
	current = DefaultTimezone
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// SetDefault changes the application timezone; invalid names are ignored.
func SetDefault(tz string) {
	if !IsValid(tz) {
		return
	}
	mu.Lock()
	current = tz
	mu.Unlock()
}

func Default() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func AppLocation() *time.Location {
	return Location(Default())
}

func Now() time.Time {
	return time.Now().In(AppLocation())
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// DateOf truncates t to midnight of its calendar day in the application timezone.
func DateOf(t time.Time) time.Time {
	local := t.In(AppLocation())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, AppLocation())
}

// ParseDateTime accepts RFC3339 or a local date-time interpreted in the
// application timezone.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, AppLocation())
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseDate parses a YYYY-MM-DD day in the application timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), AppLocation())
}
