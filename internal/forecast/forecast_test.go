package forecast

import (
	"testing"
	"time"

	"github.com/artur/tubeprophet/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func video(id, title string, views int64, daysAgo int) models.Video {
	return models.Video{
		ID:          id,
		Title:       title,
		Views:       views,
		PublishedAt: now.AddDate(0, 0, -daysAgo),
	}
}

func TestNewProjection(t *testing.T) {
	tests := []struct {
		name      string
		video     models.Video
		wantDays  int
		wantYears int
		wantAvg   float64
	}{
		{name: "ten days", video: video("a", "A", 1000, 10), wantDays: 10, wantYears: 0, wantAvg: 100},
		{name: "over a year", video: video("b", "B", 800, 400), wantDays: 400, wantYears: 1, wantAvg: 2},
		{name: "two years", video: video("c", "C", 730, 730), wantDays: 730, wantYears: 2, wantAvg: 1},
		{name: "uploaded today", video: video("d", "D", 50, 0), wantDays: 1, wantYears: 0, wantAvg: 50},
		{name: "future date", video: video("e", "E", 50, -3), wantDays: 1, wantYears: 0, wantAvg: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjection(tt.video, now)
			assert.Equal(t, tt.wantDays, p.DaysUp)
			assert.Equal(t, tt.wantYears, p.YearsUp)
			assert.InDelta(t, tt.wantAvg, p.AvgViews, 1e-9)
			assert.Equal(t, float64(tt.video.Views), p.Views)
		})
	}
}

func TestNewProjection_CalendarDays(t *testing.T) {
	// Uploaded late yesterday, one calendar day ago despite < 24h elapsed
	v := models.Video{Views: 10, PublishedAt: time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)}
	p := NewProjection(v, time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, p.DaysUp)
}

func TestFastForward(t *testing.T) {
	p := NewProjection(video("a", "A", 1000, 10), now)
	p.FastForward(1)
	assert.InDelta(t, 1100, p.Views, 1e-9)
	p.FastForward(5)
	assert.InDelta(t, 1600, p.Views, 1e-9)
}

func TestTrack_NoChanges(t *testing.T) {
	projections := NewProjections([]models.Video{
		video("a", "Leader", 10000, 10),
		video("b", "Follower", 100, 10),
	}, now)

	changes := Track(projections, 100)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Initial())
	assert.Equal(t, "Leader", changes[0].Ranking[0].Title)
	assert.Equal(t, "Follower", changes[0].Ranking[1].Title)
}

func TestTrack_Overtake(t *testing.T) {
	// Old: 1000 views, 100 days up -> 10/day. New: 500 views, 5 days up -> 100/day.
	// Day n (1-based) views: old 1000+10(n-1), new 500+100(n-1); new leads once 90(n-1) > 500, n = 7.
	projections := NewProjections([]models.Video{
		video("old", "Old", 1000, 100),
		video("new", "New", 500, 5),
	}, now)

	changes := Track(projections, 30)
	require.Len(t, changes, 2)

	assert.Equal(t, 1, changes[0].Day)
	assert.Equal(t, "Old", changes[0].Ranking[0].Title)

	assert.Equal(t, 7, changes[1].Day)
	assert.Equal(t, "New", changes[1].Ranking[0].Title)
	assert.Equal(t, "Old", changes[1].Ranking[1].Title)
	assert.InDelta(t, 1100, changes[1].Ranking[0].Views, 1e-9)
	assert.InDelta(t, 1060, changes[1].Ranking[1].Views, 1e-9)
}

func TestTrack_HorizonTooShort(t *testing.T) {
	projections := NewProjections([]models.Video{
		video("old", "Old", 1000, 100),
		video("new", "New", 500, 5),
	}, now)

	changes := Track(projections, 6)
	assert.Len(t, changes, 1)
}

func TestTrack_KeepsCallerOrder(t *testing.T) {
	projections := NewProjections([]models.Video{
		video("small", "Small", 1, 10),
		video("big", "Big", 1000, 10),
	}, now)

	changes := Track(projections, 3)
	require.NotEmpty(t, changes)
	assert.Equal(t, "Big", changes[0].Ranking[0].Title)
	assert.Equal(t, "Small", projections[0].Video.Title)
	assert.InDelta(t, 1300, projections[1].Views, 1e-9)
}

func TestTrack_Duplicates(t *testing.T) {
	projections := NewProjections([]models.Video{
		video("a", "Same", 500, 10),
		video("a", "Same", 500, 10),
	}, now)

	changes := Track(projections, 50)
	require.Len(t, changes, 1)
	assert.Len(t, changes[0].Ranking, 2)
}

func TestTrack_Empty(t *testing.T) {
	assert.Nil(t, Track(nil, 10))
	assert.Nil(t, Track(NewProjections([]models.Video{video("a", "A", 1, 1)}, now), 0))
}
