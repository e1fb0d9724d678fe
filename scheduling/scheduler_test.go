package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/scheduling"
)

func date(y int, m time.Month, d int) calendar.Date {
	return calendar.NewDate(y, m, d)
}

func TestClassify(t *testing.T) {
	for _, tt := range []struct {
		net, quota int
		want       scheduling.Band
	}{
		{0, 7, scheduling.BandFarUnder},
		{0, 6, scheduling.BandUnder},
		{5, 7, scheduling.BandUnder},
		{6, 7, scheduling.BandNone},
		{7, 7, scheduling.BandNone},
		{8, 7, scheduling.BandNone},
		{9, 7, scheduling.BandOver},
		{13, 7, scheduling.BandOver},
		{14, 7, scheduling.BandFarOver},
	} {
		assert.Equal(t, tt.want, scheduling.Classify(tt.net, tt.quota),
			"net %d quota %d", tt.net, tt.quota)
	}
}

func TestBandString(t *testing.T) {
	assert.Equal(t, "darkblue", scheduling.BandFarUnder.String())
	assert.Equal(t, "blue", scheduling.BandUnder.String())
	assert.Equal(t, "orange", scheduling.BandOver.String())
	assert.Equal(t, "red", scheduling.BandFarOver.String())
	assert.Equal(t, "", scheduling.BandNone.String())
}

func TestBuildGrid(t *testing.T) {
	// GIVEN a six-week window and three assignments of two drudges
	grid := scheduling.BuildGrid(scheduling.Input{
		Window: calendar.Period{
			From:  date(2014, time.September, 1),
			Until: date(2014, time.October, 12),
		},
		Assignments: []assignment.Assignment{
			{
				ID: "a1", DrudgeID: "d1",
				DateFrom:  date(2014, time.September, 8),
				DateUntil: date(2014, time.October, 3),
			},
			{
				ID: "a2", DrudgeID: "d2",
				DateFrom:              date(2014, time.September, 1),
				DateUntil:             date(2014, time.September, 16),
				EnvironmentCourseDate: date(2014, time.September, 10),
			},
			{
				ID: "a3", DrudgeID: "d2",
				DateFrom:  date(2014, time.September, 17),
				DateUntil: date(2014, time.September, 19),
			},
		},
		Quotas: map[calendar.Date]int{
			date(2014, time.September, 1):  8,
			date(2014, time.September, 15): 5,
		},
		Today: date(2014, time.September, 18),
	})

	require.Len(t, grid.Weeks, 6)
	assert.Equal(t, calendar.YearWeek{Year: 2014, Week: 36}, grid.Weeks[0].Week.YearWeek)
	assert.False(t, grid.Weeks[0].Week.IsCurrent)
	assert.True(t, grid.Weeks[2].Week.IsCurrent)

	// Week 36: only d2, all seven days.
	assert.Equal(t, 1, grid.Weeks[0].Available)
	assert.Equal(t, 1, grid.Weeks[0].Net)

	// Week 37: both drudges present, but d2 attends the environment course.
	assert.Equal(t, 2, grid.Weeks[1].Available)
	assert.Equal(t, 1, grid.Weeks[1].CourseAbsences)
	assert.Equal(t, 1, grid.Weeks[1].Net)

	// Week 38: d2 has 2+3 days across two assignments, enough combined.
	assert.Equal(t, 2, grid.Weeks[2].Available)

	// Week 40: d1's last five days still clear the threshold.
	assert.Equal(t, 1, grid.Weeks[4].Available)

	// Week 41: nobody left.
	assert.Equal(t, 0, grid.Weeks[5].Available)
	assert.Equal(t, 0, grid.Weeks[5].ActiveDays)

	// Quota bands: net 1 against 8 is far under, net 2 against 5 is under,
	// unconfigured weeks stay unclassified.
	require.NotNil(t, grid.Weeks[0].Quota)
	assert.Equal(t, scheduling.BandFarUnder, grid.Weeks[0].Band)
	assert.Equal(t, scheduling.BandUnder, grid.Weeks[2].Band)
	assert.Nil(t, grid.Weeks[1].Quota)
	assert.Equal(t, scheduling.BandNone, grid.Weeks[1].Band)

	// Rows come out ordered by start date with start/end day markers.
	require.Len(t, grid.Rows, 3)
	assert.Equal(t, "a2", grid.Rows[0].Assignment.ID)
	assert.Equal(t, "a1", grid.Rows[1].Assignment.ID)

	a2 := grid.Rows[0].Cells
	assert.Equal(t, 1, a2[0].StartDay)
	assert.Equal(t, 7, a2[0].Days)
	assert.True(t, a2[1].Course)
	assert.Equal(t, 16, a2[2].EndDay)
	assert.Equal(t, 2, a2[2].Days)
	assert.False(t, a2[3].Active)

	a1 := grid.Rows[1].Cells
	assert.False(t, a1[0].Active)
	assert.Equal(t, 8, a1[1].StartDay)
	assert.Equal(t, 3, a1[4].EndDay)

	a3 := grid.Rows[2].Cells
	assert.Equal(t, 17, a3[2].StartDay)
	assert.Equal(t, 19, a3[2].EndDay)
	assert.Equal(t, 3, a3[2].Days)
}

func TestBuildGrid_Average(t *testing.T) {
	grid := scheduling.BuildGrid(scheduling.Input{
		Window: calendar.Period{
			From:  date(2014, time.September, 1),
			Until: date(2014, time.September, 14),
		},
		Assignments: []assignment.Assignment{{
			ID: "a1", DrudgeID: "d1",
			DateFrom:  date(2014, time.September, 1),
			DateUntil: date(2014, time.September, 7),
		}},
		Today: date(2014, time.September, 1),
	})

	require.Len(t, grid.Weeks, 2)
	assert.InDelta(t, 3.5, grid.AverageDaysPerWeek(), 0.001)
}

func TestBuildGrid_Empty(t *testing.T) {
	// No assignments: an all-zero grid, not an error.
	grid := scheduling.BuildGrid(scheduling.Input{
		Window: calendar.Period{
			From:  date(2014, time.September, 1),
			Until: date(2014, time.September, 28),
		},
		Quotas: map[calendar.Date]int{date(2014, time.September, 1): 7},
		Today:  date(2014, time.September, 1),
	})

	require.Len(t, grid.Weeks, 4)
	assert.Empty(t, grid.Rows)
	for _, w := range grid.Weeks {
		assert.Equal(t, 0, w.Net)
	}
	// A configured quota still classifies an empty week.
	assert.Equal(t, scheduling.BandFarUnder, grid.Weeks[0].Band)
}

func TestBuildGrid_DegenerateWindow(t *testing.T) {
	grid := scheduling.BuildGrid(scheduling.Input{
		Window: calendar.Period{
			From:  date(2014, time.September, 10),
			Until: date(2014, time.September, 2),
		},
		Today: date(2014, time.September, 1),
	})

	assert.Empty(t, grid.Weeks)
	assert.Zero(t, grid.AverageDaysPerWeek())
}
