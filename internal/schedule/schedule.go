// Weekly posting schedule model.
// Built once from config at startup and never mutated afterwards.

package schedule

import (
	"fmt"
	"strings"
	"time"

	"marketbot/internal/config"
)

// Day is the resolved schedule entry for one weekday.
type Day struct {
	Weekday     time.Weekday
	Active      bool
	PostingTime time.Duration // offset from local midnight
	PostsCount  int
	ProfileIDs  []string
}

// Weekly maps every weekday to its schedule entry. The mapping is
// exhaustive: a config missing a weekday does not build.
type Weekly struct {
	days [7]Day
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// FromConfig builds the weekly model from the raw config section,
// parsing posting times and requiring all seven weekdays to be present.
func FromConfig(raw map[string]config.Day) (*Weekly, error) {
	w := &Weekly{}
	seen := 0

	for name, entry := range raw {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in schedule", name)
		}

		postingTime, err := parsePostingTime(entry.PostingTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if entry.Active && entry.PostingTime == "" {
			return nil, fmt.Errorf("%s: active day needs a posting_time", name)
		}
		if entry.Active && entry.PostsCount <= 0 {
			return nil, fmt.Errorf("%s: active day needs posts_count > 0", name)
		}

		w.days[weekday] = Day{
			Weekday:     weekday,
			Active:      entry.Active,
			PostingTime: postingTime,
			PostsCount:  entry.PostsCount,
			ProfileIDs:  append([]string(nil), entry.ProfileIDs...),
		}
		seen++
	}

	if seen != 7 {
		return nil, fmt.Errorf("schedule must cover all 7 weekdays, got %d", seen)
	}
	return w, nil
}

func parsePostingTime(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid posting_time %q (want HH:MM): %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Day returns the schedule entry for the given weekday.
func (w *Weekly) Day(d time.Weekday) Day {
	return w.days[d]
}

// ActiveDays returns the entries flagged to run publishing.
func (w *Weekly) ActiveDays() []Day {
	var active []Day
	for _, d := range w.days {
		if d.Active {
			active = append(active, d)
		}
	}
	return active
}

// PostTimeOn projects a day's posting time onto the calendar date of ref.
func (d Day) PostTimeOn(ref time.Time) time.Time {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return midnight.Add(d.PostingTime)
}
