package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbot/internal/config"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]config.Day
		wantErr string
	}{
		{
			name: "full valid week",
			raw: fillWeek(map[string]config.Day{
				"monday": {Active: true, PostingTime: "10:00", PostsCount: 2, ProfileIDs: []string{"p1"}},
			}),
		},
		{
			name:    "missing weekdays",
			raw:     map[string]config.Day{"monday": {}},
			wantErr: "must cover all 7 weekdays",
		},
		{
			name: "unknown weekday name",
			raw: fillWeek(map[string]config.Day{
				"moonday": {},
			}),
			wantErr: "unknown weekday",
		},
		{
			name: "bad posting time",
			raw: fillWeek(map[string]config.Day{
				"monday": {Active: true, PostingTime: "25:99", PostsCount: 1},
			}),
			wantErr: "invalid posting_time",
		},
		{
			name: "active day without posting time",
			raw: fillWeek(map[string]config.Day{
				"monday": {Active: true, PostsCount: 1},
			}),
			wantErr: "needs a posting_time",
		},
		{
			name: "active day without posts count",
			raw: fillWeek(map[string]config.Day{
				"monday": {Active: true, PostingTime: "10:00"},
			}),
			wantErr: "posts_count > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := FromConfig(tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, w)
		})
	}
}

func TestFromConfigCaseInsensitiveNames(t *testing.T) {
	raw := fillWeek(nil)
	delete(raw, "monday")
	raw["Monday"] = config.Day{Active: true, PostingTime: "08:00", PostsCount: 1}

	w, err := FromConfig(raw)
	require.NoError(t, err)
	assert.True(t, w.Day(time.Monday).Active)
}

func TestActiveDays(t *testing.T) {
	w, err := FromConfig(fillWeek(map[string]config.Day{
		"tuesday":  {Active: true, PostingTime: "09:00", PostsCount: 1},
		"saturday": {Active: true, PostingTime: "18:00", PostsCount: 3},
	}))
	require.NoError(t, err)

	active := w.ActiveDays()
	require.Len(t, active, 2)
	assert.Equal(t, time.Tuesday, active[0].Weekday)
	assert.Equal(t, time.Saturday, active[1].Weekday)
}

func TestPostTimeOn(t *testing.T) {
	day := Day{Weekday: time.Friday, PostingTime: 16*time.Hour + 45*time.Minute}
	ref := time.Date(2026, 1, 9, 3, 12, 55, 0, time.Local)

	got := day.PostTimeOn(ref)
	assert.Equal(t, time.Date(2026, 1, 9, 16, 45, 0, 0, time.Local), got)
}
