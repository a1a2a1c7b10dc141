// server/internal/api/handlers/delivery_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/cache"
	"bill-delivery-api-server/internal/delivery"
	"bill-delivery-api-server/internal/models"
	"bill-delivery-api-server/internal/s3"
	"bill-delivery-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Cache keys invalidated whenever a delivery changes.
const summaryCacheKey = "dashboard:summary"

type DeliveryHandler struct {
	DB         *mongo.Database
	Recorder   *delivery.Recorder
	S3Uploader *s3.Uploader
	Hub        *socket.Hub
	Cache      *cache.Client
}

type CreateDeliveryRequest struct {
	PropertyID     string   `json:"propertyID" binding:"required"`
	DataSource     string   `json:"dataSource" binding:"required"`
	ReceiverName   string   `json:"receiverName"`
	ReceiverMobile string   `json:"receiverMobile"`
	PhotoURL       string   `json:"photoURL" binding:"required"`
	Longitude      *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Latitude       *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Remarks        string   `json:"remarks"`
}

type RequestCorrectionRequest struct {
	Reason  string                    `json:"reason" binding:"required"`
	Changes *models.CorrectionChanges `json:"changes" binding:"required"`
}

type ReviewCorrectionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

// CreateDelivery records one delivery attempt. The property flips to
// Delivered or Not Found depending on the data source, and connected
// admin dashboards get a live event.
func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	staffID := c.GetString(middleware.ContextUserID)

	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidDataSource(req.DataSource) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown data source: " + req.DataSource})
		return
	}
	if req.DataSource != models.SourceNotFound && req.ReceiverName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "receiverName is required unless the property was not found"})
		return
	}

	propertyOID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid property id"})
		return
	}

	record, err := h.Recorder.Record(c.Request.Context(), propertyOID, delivery.Attempt{
		StaffID:        staffID,
		DataSource:     req.DataSource,
		ReceiverName:   req.ReceiverName,
		ReceiverMobile: req.ReceiverMobile,
		PhotoURL:       req.PhotoURL,
		Location:       models.GeoPoint{Longitude: *req.Longitude, Latitude: *req.Latitude},
		Remarks:        req.Remarks,
	})
	if err != nil {
		switch {
		case errors.Is(err, delivery.ErrPropertyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Property not found"})
		case errors.Is(err, delivery.ErrAlreadyRecorded):
			c.JSON(http.StatusConflict, gin.H{"message": "A delivery is already recorded for this property"})
		default:
			log.Printf("Failed to record delivery for property %s: %v", req.PropertyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record delivery"})
		}
		return
	}

	h.Cache.Invalidate(c.Request.Context(), summaryCacheKey)
	h.Hub.BroadcastToRoles(
		socket.Event{Type: socket.EventDeliveryRecorded, Payload: record},
		models.RoleAdmin, models.RoleCommissioner,
	)

	c.JSON(http.StatusCreated, record)
}

// UploadPhoto stores a delivery proof photo and returns its URL. The
// client uploads the photo first, then references the URL when it
// submits the delivery.
func (h *DeliveryHandler) UploadPhoto(c *gin.Context) {
	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Photo storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "photo form field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to open uploaded photo"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := fmt.Sprintf("deliveries/%s/%s", c.GetString(middleware.ContextUserID), uuid.New().String())
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photoURL": url})
}

// GetAllDeliveries lists deliveries for admin and commissioner views,
// with optional staff/ward/date filters.
func (h *DeliveryHandler) GetAllDeliveries(c *gin.Context) {
	filter := bson.M{}
	if staff := c.Query("staff"); staff != "" {
		filter["staffID"] = staff
	}
	if ward := c.Query("ward"); ward != "" {
		filter["wardID"] = ward
	}

	dateRange := bson.M{}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		dateRange["$gte"] = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
		dateRange["$lt"] = t.AddDate(0, 0, 1)
	}
	if len(dateRange) > 0 {
		filter["deliveredAt"] = dateRange
	}

	h.listDeliveries(c, filter)
}

// GetStaffHistory lists the calling staff member's own deliveries.
func (h *DeliveryHandler) GetStaffHistory(c *gin.Context) {
	h.listDeliveries(c, bson.M{"staffID": c.GetString(middleware.ContextUserID)})
}

func (h *DeliveryHandler) listDeliveries(c *gin.Context, filter bson.M) {
	opts := options.Find().SetSort(bson.M{"deliveredAt": -1})
	cursor, err := h.DB.Collection("deliveries").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query deliveries"})
		return
	}
	defer cursor.Close(context.Background())

	var deliveries []models.Delivery
	if err = cursor.All(context.Background(), &deliveries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode deliveries"})
		return
	}

	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	c.JSON(http.StatusOK, deliveries)
}

// GetDeliveryByID returns one delivery record.
func (h *DeliveryHandler) GetDeliveryByID(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid delivery id"})
		return
	}

	var record models.Delivery
	err = h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve delivery"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// RequestCorrection opens an edit request on the caller's own delivery.
// Legal only from the none and rejected states.
func (h *DeliveryHandler) RequestCorrection(c *gin.Context) {
	staffID := c.GetString(middleware.ContextUserID)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid delivery id"})
		return
	}

	var req RequestCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Changes.DataSource != "" && !models.ValidDataSource(req.Changes.DataSource) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown data source: " + req.Changes.DataSource})
		return
	}

	var record models.Delivery
	err = h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve delivery"})
		}
		return
	}

	if record.StaffID != staffID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only request corrections on your own deliveries"})
		return
	}
	if !record.Correction.CanRequestCorrection() {
		c.JSON(http.StatusConflict, gin.H{"message": "A correction is already " + record.Correction.Status + " for this delivery"})
		return
	}

	now := time.Now()
	_, err = h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"correction": models.Correction{
			Status:      models.CorrectionPending,
			Changes:     req.Changes,
			Reason:      req.Reason,
			RequestedAt: &now,
		},
		"updatedAt": now,
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to request correction"})
		return
	}

	h.Hub.BroadcastToRoles(
		socket.Event{Type: socket.EventCorrectionRequested, Payload: gin.H{"deliveryID": oid.Hex(), "staffID": staffID}},
		models.RoleAdmin,
	)

	c.JSON(http.StatusOK, gin.H{"message": "Correction requested"})
}

// GetCorrections lists deliveries by correction status (default pending)
// for the admin review queue.
func (h *DeliveryHandler) GetCorrections(c *gin.Context) {
	status := c.DefaultQuery("status", models.CorrectionPending)
	h.listDeliveries(c, bson.M{"correction.status": status})
}

// ReviewCorrection approves or rejects a pending edit request. Approval
// applies the requested changes and re-derives the property status when
// the data source changed.
func (h *DeliveryHandler) ReviewCorrection(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("deliveryID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid delivery id"})
		return
	}

	var req ReviewCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var record models.Delivery
	err = h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Delivery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve delivery"})
		}
		return
	}

	if !record.Correction.CanReview() {
		c.JSON(http.StatusConflict, gin.H{"message": "No pending correction on this delivery"})
		return
	}

	now := time.Now()
	set := bson.M{
		"correction.status":     req.Decision,
		"correction.reviewedBy": c.GetString(middleware.ContextUserID),
		"correction.reviewedAt": now,
		"updatedAt":             now,
	}

	if req.Decision == models.CorrectionApproved && record.Correction.Changes != nil {
		changes := record.Correction.Changes
		if changes.DataSource != "" {
			set["dataSource"] = changes.DataSource
		}
		if changes.ReceiverName != "" {
			set["receiverName"] = changes.ReceiverName
		}
		if changes.ReceiverMobile != "" {
			set["receiverMobile"] = changes.ReceiverMobile
		}
		if changes.Remarks != "" {
			set["remarks"] = changes.Remarks
		}
	}

	_, err = h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to review correction"})
		return
	}

	// Keep the property status consistent with an approved data source
	// change.
	if req.Decision == models.CorrectionApproved && record.Correction.Changes != nil && record.Correction.Changes.DataSource != "" {
		if propertyOID, pErr := primitive.ObjectIDFromHex(record.PropertyID); pErr == nil {
			_, err := h.DB.Collection("properties").UpdateOne(context.Background(), bson.M{"_id": propertyOID}, bson.M{"$set": bson.M{
				"status":    models.PropertyStatusFor(record.Correction.Changes.DataSource),
				"updatedAt": now,
			}})
			if err != nil {
				log.Printf("Failed to update property %s status after approved correction on delivery %s: %v", record.PropertyID, oid.Hex(), err)
			}
		}
	}

	h.Cache.Invalidate(c.Request.Context(), summaryCacheKey)
	if err := h.Hub.Send(record.StaffID, socket.Event{
		Type:    socket.EventCorrectionReviewed,
		Payload: gin.H{"deliveryID": oid.Hex(), "decision": req.Decision},
	}); err != nil {
		log.Printf("Failed to push correction review to %s: %v", record.StaffID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Correction " + req.Decision})
}
