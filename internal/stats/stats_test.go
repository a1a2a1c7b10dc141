package stats

import (
	"testing"
	"time"

	"bill-delivery-api-server/internal/models"

	"github.com/stretchr/testify/assert"
)

// A fixed "now" makes the window boundaries deterministic.
var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func delivery(staffID, zone, dataSource string, deliveredAt time.Time) models.Delivery {
	return models.Delivery{
		StaffID:     staffID,
		Zone:        zone,
		DataSource:  dataSource,
		DeliveredAt: deliveredAt,
	}
}

func TestSummarize_Windows(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now.Add(-2*time.Hour)),            // today
		delivery("s1", "North", models.SourceOwner, now.AddDate(0, 0, -3)),            // this week
		delivery("s2", "South", models.SourceTenant, now.AddDate(0, 0, -20)),          // this month
		delivery("s2", "South", models.SourceNotFound, now.AddDate(0, 0, -60)),        // older
		delivery("s1", "North", models.SourceFamily, now.Add(30*time.Minute)),         // future still counts
	}

	s := Summarize(deliveries, now)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Today)
	assert.Equal(t, 3, s.Last7Days)
	assert.Equal(t, 4, s.Last30Days)
	assert.Equal(t, 4, s.Delivered)
	assert.Equal(t, 80, s.CompletionPercent)
}

func TestSummarize_TodayBoundaryIsMidnight(t *testing.T) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, midnight),                      // inclusive lower bound
		delivery("s1", "North", models.SourceOwner, midnight.Add(-time.Second)),    // yesterday
	}

	s := Summarize(deliveries, now)

	assert.Equal(t, 1, s.Today)
	assert.Equal(t, 2, s.Last7Days)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, now)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.CompletionPercent)
	assert.Equal(t, 0.0, s.AveragePerDay)
}

func TestSummarize_AveragePerDay(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now.AddDate(0, 0, -4)),
		delivery("s1", "North", models.SourceOwner, now.AddDate(0, 0, -1)),
		delivery("s1", "North", models.SourceOwner, now),
	}

	s := Summarize(deliveries, now)

	// 3 deliveries over 5 calendar days inclusive.
	assert.InDelta(t, 0.6, s.AveragePerDay, 1e-9)
}

func TestSummarize_AveragePerDay_SingleDay(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now.Add(-time.Hour)),
		delivery("s1", "North", models.SourceOwner, now),
	}

	s := Summarize(deliveries, now)

	assert.InDelta(t, 2.0, s.AveragePerDay, 1e-9)
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, 0, CompletionPercent(0, 0))
	assert.Equal(t, 0, CompletionPercent(0, 10))
	assert.Equal(t, 100, CompletionPercent(10, 10))
	assert.Equal(t, 67, CompletionPercent(2, 3))
	assert.Equal(t, 33, CompletionPercent(1, 3))
	assert.Equal(t, 50, CompletionPercent(1, 2))
}

func TestByZone(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now),
		delivery("s2", "South", models.SourceNotFound, now),
		delivery("s1", "North", models.SourceOwner, now),
		delivery("s3", "North", models.SourceNotFound, now),
	}

	groups := ByZone(deliveries)

	assert.Len(t, groups, 2)
	assert.Equal(t, GroupStat{Key: "North", Total: 3, Delivered: 2, CompletionPercent: 67}, groups[0])
	assert.Equal(t, GroupStat{Key: "South", Total: 1, Delivered: 0, CompletionPercent: 0}, groups[1])
}

func TestRollup_EmptyInput(t *testing.T) {
	groups := ByZone(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestTopStaff(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now),
		delivery("s2", "North", models.SourceOwner, now),
		delivery("s2", "North", models.SourceNotFound, now),
		delivery("s3", "South", models.SourceOwner, now),
		delivery("s3", "South", models.SourceOwner, now),
		delivery("s3", "South", models.SourceOwner, now),
	}

	top := TopStaff(deliveries, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "s3", top[0].Key)
	assert.Equal(t, 3, top[0].Total)
	assert.Equal(t, "s2", top[1].Key)
	assert.Equal(t, 2, top[1].Total)
}

func TestTopStaff_TiesKeepFirstSeenOrder(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now),
		delivery("s2", "North", models.SourceOwner, now),
	}

	top := TopStaff(deliveries, 10)

	assert.Equal(t, "s1", top[0].Key)
	assert.Equal(t, "s2", top[1].Key)
}

func TestAggregationIsIdempotent(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "North", models.SourceOwner, now.AddDate(0, 0, -2)),
		delivery("s2", "South", models.SourceNotFound, now),
		delivery("s1", "North", models.SourceFamily, now),
	}

	first := Summarize(deliveries, now)
	second := Summarize(deliveries, now)
	assert.Equal(t, first, second)

	assert.Equal(t, ByZone(deliveries), ByZone(deliveries))
	assert.Equal(t, TopStaff(deliveries, 10), TopStaff(deliveries, 10))
}

// The worked example from the dashboard contract: three records, one
// not_found.
func TestDeliveredCountExample(t *testing.T) {
	deliveries := []models.Delivery{
		delivery("s1", "Z", models.SourceOwner, now),
		delivery("s1", "Z", models.SourceNotFound, now),
		delivery("s1", "Z", models.SourceOwner, now),
	}

	s := Summarize(deliveries, now)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Delivered)
	assert.Equal(t, 67, s.CompletionPercent)
}
