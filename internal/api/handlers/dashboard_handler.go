// server/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/cache"
	"bill-delivery-api-server/internal/models"
	"bill-delivery-api-server/internal/stats"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DashboardHandler struct {
	DB    *mongo.Database
	Cache *cache.Client
}

// StaffStat is a staff rollup row with the display name resolved.
type StaffStat struct {
	stats.GroupStat
	Name string `json:"name"`
}

// DashboardSummary is the payload for the admin and commissioner
// dashboards.
type DashboardSummary struct {
	Summary  stats.Summary     `json:"summary"`
	ByZone   []stats.GroupStat `json:"byZone"`
	TopStaff []StaffStat       `json:"topStaff"`
}

// StaffDashboard returns the calling staff member's own figures.
func (h *DashboardHandler) StaffDashboard(c *gin.Context) {
	staffID := c.GetString(middleware.ContextUserID)

	deliveries, ok := h.fetchDeliveries(c, bson.M{"staffID": staffID})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, stats.Summarize(deliveries, time.Now()))
}

// Summary returns the global dashboard: headline figures, per-zone
// completion and the top ten staff. Served from Redis when fresh;
// a cache failure just means recomputing.
func (h *DashboardHandler) Summary(c *gin.Context) {
	var cached DashboardSummary
	if h.Cache.Get(c.Request.Context(), summaryCacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	deliveries, ok := h.fetchDeliveries(c, bson.M{})
	if !ok {
		return
	}

	summary := DashboardSummary{
		Summary:  stats.Summarize(deliveries, time.Now()),
		ByZone:   stats.ByZone(deliveries),
		TopStaff: h.resolveStaffNames(stats.TopStaff(deliveries, 10)),
	}

	h.Cache.Set(c.Request.Context(), summaryCacheKey, summary)

	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) fetchDeliveries(c *gin.Context, filter bson.M) ([]models.Delivery, bool) {
	cursor, err := h.DB.Collection("deliveries").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query deliveries"})
		return nil, false
	}
	defer cursor.Close(context.Background())

	var deliveries []models.Delivery
	if err = cursor.All(context.Background(), &deliveries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode deliveries"})
		return nil, false
	}
	return deliveries, true
}

// resolveStaffNames turns staff ids in rollup keys into display names.
// An id with no matching user keeps the raw id so the row still renders.
func (h *DashboardHandler) resolveStaffNames(groups []stats.GroupStat) []StaffStat {
	ids := make([]primitive.ObjectID, 0, len(groups))
	for _, g := range groups {
		if oid, err := primitive.ObjectIDFromHex(g.Key); err == nil {
			ids = append(ids, oid)
		}
	}

	names := make(map[string]string)
	if len(ids) > 0 {
		cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"_id": bson.M{"$in": ids}})
		if err == nil {
			var users []models.User
			if cursor.All(context.Background(), &users) == nil {
				for i := range users {
					names[users[i].ID.Hex()] = users[i].FullName
				}
			}
		}
	}

	resolved := []StaffStat{}
	for _, g := range groups {
		name, ok := names[g.Key]
		if !ok {
			name = g.Key
		}
		resolved = append(resolved, StaffStat{GroupStat: g, Name: name})
	}
	return resolved
}
