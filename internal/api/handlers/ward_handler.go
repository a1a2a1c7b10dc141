// server/internal/api/handlers/ward_handler.go
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"bill-delivery-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WardHandler struct {
	DB *mongo.Database
}

type CreateWardRequest struct {
	Name     string   `json:"name" binding:"required"`
	Zone     string   `json:"zone" binding:"required"`
	Mohallas []string `json:"mohallas"`
}

// GetAllWards lists wards, optionally filtered by zone.
func (h *WardHandler) GetAllWards(c *gin.Context) {
	filter := bson.M{}
	if zone := c.Query("zone"); zone != "" {
		filter["zone"] = zone
	}

	cursor, err := h.DB.Collection("wards").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query wards"})
		return
	}
	defer cursor.Close(context.Background())

	var wards []models.Ward
	if err = cursor.All(context.Background(), &wards); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode wards"})
		return
	}

	if wards == nil {
		wards = []models.Ward{}
	}

	c.JSON(http.StatusOK, wards)
}

// GetZones returns the derived zone view: wards grouped by their
// corporate name. Zones are never persisted, this grouping is computed
// on every read and ordered by zone name for stable output.
func (h *WardHandler) GetZones(c *gin.Context) {
	cursor, err := h.DB.Collection("wards").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query wards"})
		return
	}
	defer cursor.Close(context.Background())

	var wards []models.Ward
	if err = cursor.All(context.Background(), &wards); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode wards"})
		return
	}

	grouped := make(map[string][]models.Ward)
	for _, ward := range wards {
		grouped[ward.Zone] = append(grouped[ward.Zone], ward)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	zones := []models.Zone{}
	for _, name := range names {
		zones = append(zones, models.Zone{Name: name, Wards: grouped[name]})
	}

	c.JSON(http.StatusOK, zones)
}

// CreateWard adds a ward to a zone.
func (h *WardHandler) CreateWard(c *gin.Context) {
	var req CreateWardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	collection := h.DB.Collection("wards")

	count, err := collection.CountDocuments(context.Background(), bson.M{"name": req.Name, "zone": req.Zone})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error checking for ward"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Ward already exists in this zone"})
		return
	}

	if req.Mohallas == nil {
		req.Mohallas = []string{}
	}

	now := time.Now()
	newWard := models.Ward{
		Name:      req.Name,
		Zone:      req.Zone,
		Mohallas:  req.Mohallas,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := collection.InsertOne(context.Background(), newWard)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create ward"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newWard.ID = oid
	}

	c.JSON(http.StatusCreated, newWard)
}

// UpdateWard replaces name, zone and mohalla list of a ward.
func (h *WardHandler) UpdateWard(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ward id"})
		return
	}

	var req CreateWardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Mohallas == nil {
		req.Mohallas = []string{}
	}

	result, err := h.DB.Collection("wards").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":      req.Name,
		"zone":      req.Zone,
		"mohallas":  req.Mohallas,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update ward"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ward not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ward updated successfully"})
}

// DeleteWard removes a ward. Properties keep their wardID string; a
// dangling id only means the ward column reads empty on the dashboard.
func (h *WardHandler) DeleteWard(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ward id"})
		return
	}

	result, err := h.DB.Collection("wards").DeleteOne(context.Background(), bson.M{"_id": oid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete ward"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ward not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ward deleted successfully"})
}
