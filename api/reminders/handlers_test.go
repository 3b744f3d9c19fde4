package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayStartFollowsOperationalZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 22:30 UTC is already the next calendar day in Berlin during DST.
	summer := time.Date(2026, 6, 30, 22, 30, 0, 0, time.UTC)
	got := dayStart(summer, berlin)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, berlin), got)

	winter := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)
	got = dayStart(winter, berlin)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, berlin), got)

	// An instant already in the zone keeps its calendar day.
	local := time.Date(2026, 3, 5, 9, 0, 0, 0, berlin)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, berlin), dayStart(local, berlin))
}
