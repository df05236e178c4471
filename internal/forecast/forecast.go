// Package forecast projects view counts forward and tracks ranking changes.
package forecast

import (
	"sort"
	"time"

	"github.com/artur/tubeprophet/internal/database/models"
)

// DefaultDays is the default tracking horizon.
const DefaultDays = 100

const hoursPerDay = 24

// Projection is a video whose views grow by its historical daily average.
type Projection struct {
	Video    models.Video
	Views    float64
	DaysUp   int
	YearsUp  int
	AvgViews float64
}

// NewProjection derives the upload age and daily average of v as of now.
// The age is clamped to one day so same-day uploads have a finite average.
func NewProjection(v models.Video, now time.Time) *Projection {
	days := daysBetween(v.PublishedAt, now)
	if days < 1 {
		days = 1
	}
	return &Projection{
		Video:    v,
		Views:    float64(v.Views),
		DaysUp:   days,
		YearsUp:  days / 365,
		AvgViews: float64(v.Views) / float64(days),
	}
}

// NewProjections builds one projection per video, keeping order.
func NewProjections(videos []models.Video, now time.Time) []*Projection {
	out := make([]*Projection, 0, len(videos))
	for _, v := range videos {
		out = append(out, NewProjection(v, now))
	}
	return out
}

// FastForward advances the projection by days at the average daily rate.
func (p *Projection) FastForward(days int) {
	p.Views += p.AvgViews * float64(days)
}

// Entry is a projection's position on a given day.
type Entry struct {
	VideoID string
	Title   string
	Views   float64
}

// Change is the ranking recorded on a day. Day is 1-based.
type Change struct {
	Day     int
	Ranking []Entry
}

// Initial reports whether this is the starting state.
func (c Change) Initial() bool {
	return c.Day == 1
}

// Track simulates days of growth and returns the starting ranking followed by
// every ranking that differs from the previous day. Projections are advanced
// in place; the caller's slice order is left untouched.
func Track(projections []*Projection, days int) []Change {
	if len(projections) == 0 || days <= 0 {
		return nil
	}

	order := make([]*Projection, len(projections))
	copy(order, projections)

	var changes []Change
	var prev []*Projection
	for day := 0; day < days; day++ {
		sort.SliceStable(order, func(i, j int) bool {
			return order[i].Views > order[j].Views
		})

		if day == 0 || reordered(prev, order) {
			changes = append(changes, Change{Day: day + 1, Ranking: entries(order)})
		}
		prev = append(prev[:0], order...)

		for _, p := range order {
			p.FastForward(1)
		}
	}
	return changes
}

func reordered(prev, cur []*Projection) bool {
	for i := range prev {
		if prev[i] != cur[i] {
			return true
		}
	}
	return false
}

func entries(order []*Projection) []Entry {
	out := make([]Entry, len(order))
	for i, p := range order {
		out[i] = Entry{VideoID: p.Video.ID, Title: p.Video.Title, Views: p.Views}
	}
	return out
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / hoursPerDay)
}
