// server/internal/api/handlers/payout_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/models"
	"bill-delivery-api-server/internal/stats"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PayoutHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type GeneratePayoutsRequest struct {
	From string `json:"from" binding:"required"` // YYYY-MM-DD
	To   string `json:"to" binding:"required"`   // YYYY-MM-DD, inclusive
}

// GeneratePayouts creates one pending payout per staff member for the
// period, amount = delivered count times the configured rate. Staff who
// already have a payout overlapping the period are skipped so a rerun
// does not double-pay.
func (h *PayoutHandler) GeneratePayouts(c *gin.Context) {
	var req GeneratePayoutsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid to date, expected YYYY-MM-DD"})
		return
	}
	toExclusive := to.AddDate(0, 0, 1)
	if !from.Before(toExclusive) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "from must not be after to"})
		return
	}

	cursor, err := h.DB.Collection("deliveries").Find(context.Background(), bson.M{
		"deliveredAt": bson.M{"$gte": from, "$lt": toExclusive},
		"dataSource":  bson.M{"$ne": models.SourceNotFound},
	})
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

	rate := h.Cfg.Payout.RatePerDelivery
	payoutCollection := h.DB.Collection("payouts")
	now := time.Now()

	created := []models.Payout{}
	for _, group := range stats.ByStaff(deliveries) {
		count, err := payoutCollection.CountDocuments(context.Background(), bson.M{
			"staffID":    group.Key,
			"periodFrom": bson.M{"$lt": toExclusive},
			"periodTo":   bson.M{"$gte": from},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error checking for payouts"})
			return
		}
		if count > 0 {
			continue
		}

		staffName := group.Key
		if oid, oErr := primitive.ObjectIDFromHex(group.Key); oErr == nil {
			var user models.User
			if payoutUserErr := h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&user); payoutUserErr == nil {
				staffName = user.FullName
			}
		}

		payout := models.Payout{
			StaffID:         group.Key,
			StaffName:       staffName,
			PeriodFrom:      from,
			PeriodTo:        to,
			DeliveredCount:  group.Delivered,
			RatePerDelivery: rate,
			Amount:          float64(group.Delivered) * rate,
			Status:          models.PayoutPending,
			CreatedAt:       now,
		}
		result, err := payoutCollection.InsertOne(context.Background(), payout)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create payout"})
			return
		}
		payout.ID = result.InsertedID.(primitive.ObjectID)
		created = append(created, payout)
	}

	c.JSON(http.StatusCreated, created)
}

// GetAllPayouts lists payouts, optionally filtered by staff or status.
func (h *PayoutHandler) GetAllPayouts(c *gin.Context) {
	filter := bson.M{}
	if staff := c.Query("staff"); staff != "" {
		filter["staffID"] = staff
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := h.DB.Collection("payouts").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query payouts"})
		return
	}
	defer cursor.Close(context.Background())

	var payouts []models.Payout
	if err = cursor.All(context.Background(), &payouts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode payouts"})
		return
	}

	if payouts == nil {
		payouts = []models.Payout{}
	}

	c.JSON(http.StatusOK, payouts)
}

// MarkPaid flips a pending payout to paid.
func (h *PayoutHandler) MarkPaid(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payout id"})
		return
	}

	var payout models.Payout
	err = h.DB.Collection("payouts").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&payout)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Payout not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch payout"})
		return
	}
	if !payout.CanMarkPaid() {
		c.JSON(http.StatusConflict, gin.H{"message": "Payout is already marked as paid"})
		return
	}

	_, err = h.DB.Collection("payouts").UpdateOne(context.Background(),
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": models.PayoutPaid}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update payout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payout marked as paid"})
}
