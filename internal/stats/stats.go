// server/internal/stats/stats.go

// Package stats computes dashboard figures from already-fetched delivery
// records. Everything here is pure: failures belong to the fetch step.
package stats

import (
	"math"
	"sort"
	"time"

	"bill-delivery-api-server/internal/models"
)

// Summary is the headline block shown on every dashboard.
type Summary struct {
	Total             int     `json:"total"`
	Today             int     `json:"today"`
	Last7Days         int     `json:"last7Days"`
	Last30Days        int     `json:"last30Days"`
	Delivered         int     `json:"delivered"`
	CompletionPercent int     `json:"completionPercent"`
	AveragePerDay     float64 `json:"averagePerDay"`
}

// GroupStat is one row of a per-zone or per-staff rollup.
type GroupStat struct {
	Key               string `json:"key"`
	Total             int    `json:"total"`
	Delivered         int    `json:"delivered"`
	CompletionPercent int    `json:"completionPercent"`
}

// windowStart truncates now to local midnight and steps back so that the
// window spans `days` calendar days including today. Windows have no
// upper bound: anything timestamped in the future still counts.
func windowStart(now time.Time, days int) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -(days - 1))
}

// CompletionPercent is delivered/total as a percent rounded to the
// nearest integer. A group with no deliveries reads 0.
func CompletionPercent(delivered, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(delivered) / float64(total) * 100))
}

// Summarize computes the headline block for a scope (one staff member or
// all deliveries). now is injected so the window boundaries are testable.
func Summarize(deliveries []models.Delivery, now time.Time) Summary {
	todayStart := windowStart(now, 1)
	weekStart := windowStart(now, 7)
	monthStart := windowStart(now, 30)

	s := Summary{Total: len(deliveries)}
	var earliest time.Time
	for i := range deliveries {
		d := &deliveries[i]
		if !d.DeliveredAt.Before(todayStart) {
			s.Today++
		}
		if !d.DeliveredAt.Before(weekStart) {
			s.Last7Days++
		}
		if !d.DeliveredAt.Before(monthStart) {
			s.Last30Days++
		}
		if d.Delivered() {
			s.Delivered++
		}
		if earliest.IsZero() || d.DeliveredAt.Before(earliest) {
			earliest = d.DeliveredAt
		}
	}
	s.CompletionPercent = CompletionPercent(s.Delivered, s.Total)
	s.AveragePerDay = averagePerDay(s.Total, earliest, now)
	return s
}

// averagePerDay divides the total by the number of calendar days since
// the earliest delivery, inclusive, floored at one day. Known to be a
// naive heuristic; kept until product defines the real measure.
func averagePerDay(total int, earliest, now time.Time) float64 {
	if total == 0 {
		return 0
	}
	days := 1
	if !earliest.IsZero() {
		earliestMidnight := windowStart(earliest, 1)
		nowMidnight := windowStart(now, 1)
		days = int(nowMidnight.Sub(earliestMidnight).Hours()/24) + 1
		if days < 1 {
			days = 1
		}
	}
	return float64(total) / float64(days)
}

// Rollup groups deliveries by the given key and computes per-group
// totals and completion. Groups appear in first-seen order so repeated
// runs over the same input produce identical output.
func Rollup(deliveries []models.Delivery, keyOf func(*models.Delivery) string) []GroupStat {
	index := make(map[string]int)
	groups := []GroupStat{}
	for i := range deliveries {
		d := &deliveries[i]
		key := keyOf(d)
		at, ok := index[key]
		if !ok {
			at = len(groups)
			index[key] = at
			groups = append(groups, GroupStat{Key: key})
		}
		groups[at].Total++
		if d.Delivered() {
			groups[at].Delivered++
		}
	}
	for i := range groups {
		groups[i].CompletionPercent = CompletionPercent(groups[i].Delivered, groups[i].Total)
	}
	return groups
}

// ByZone rolls deliveries up by their zone name.
func ByZone(deliveries []models.Delivery) []GroupStat {
	return Rollup(deliveries, func(d *models.Delivery) string { return d.Zone })
}

// ByStaff rolls deliveries up by the recording staff member.
func ByStaff(deliveries []models.Delivery) []GroupStat {
	return Rollup(deliveries, func(d *models.Delivery) string { return d.StaffID })
}

// TopStaff returns up to n staff rollups ordered by total delivery count
// descending. Ties keep first-seen order.
func TopStaff(deliveries []models.Delivery, n int) []GroupStat {
	groups := ByStaff(deliveries)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
