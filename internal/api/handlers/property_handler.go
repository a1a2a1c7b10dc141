// server/internal/api/handlers/property_handler.go
package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/models"
	"bill-delivery-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PropertyHandler struct {
	DB         *mongo.Database
	S3Uploader *s3.Uploader
}

// GetAllProperties lists properties with optional ward/status/search
// filters and page/limit pagination.
func (h *PropertyHandler) GetAllProperties(c *gin.Context) {
	filter := bson.M{}
	if ward := c.Query("ward"); ward != "" {
		filter["wardID"] = ward
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if search := c.Query("search"); search != "" {
		pattern := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"ownerName": pattern},
			{"houseNumber": pattern},
			{"address": pattern},
		}
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	collection := h.DB.Collection("properties")

	total, err := collection.CountDocuments(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to count properties"})
		return
	}

	opts := options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
	cursor, err := collection.Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query properties"})
		return
	}
	defer cursor.Close(context.Background())

	var properties []models.Property
	if err = cursor.All(context.Background(), &properties); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode properties"})
		return
	}

	if properties == nil {
		properties = []models.Property{}
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// GetPropertyByID returns one property.
func (h *PropertyHandler) GetPropertyByID(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid property id"})
		return
	}

	var property models.Property
	err = h.DB.Collection("properties").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&property)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "Property not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve property"})
		}
		return
	}

	c.JSON(http.StatusOK, property)
}

// UploadProperties ingests a CSV of properties for one ward. Expected
// columns: ownerName, address, fatherName, houseNumber, mobile (header
// row required, first two columns mandatory per row). The raw file is
// archived to S3 so a bad upload can be audited later.
func (h *PropertyHandler) UploadProperties(c *gin.Context) {
	wardID := c.PostForm("wardID")
	if wardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "wardID form field is required"})
		return
	}

	count, err := h.DB.Collection("wards").CountDocuments(context.Background(), bson.M{"_id": mustObjectID(wardID)})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ward does not exist"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file form field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read uploaded file"})
		return
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid CSV file: " + err.Error()})
		return
	}
	if len(rows) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "CSV has no data rows"})
		return
	}

	batchID := fmt.Sprintf("UPL-%s", uuid.New().String()[:8])
	now := time.Now()

	var docs []interface{}
	skipped := 0
	for _, row := range rows[1:] {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			skipped++
			continue
		}
		property := models.Property{
			WardID:        wardID,
			OwnerName:     row[0],
			Address:       row[1],
			Status:        models.PropertyPending,
			UploadBatchID: batchID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if len(row) > 2 {
			property.FatherName = row[2]
		}
		if len(row) > 3 {
			property.HouseNumber = row[3]
		}
		if len(row) > 4 {
			property.Mobile = row[4]
		}
		docs = append(docs, property)
	}

	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No valid rows in CSV"})
		return
	}

	if _, err := h.DB.Collection("properties").InsertMany(context.Background(), docs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to insert properties"})
		return
	}

	// Archive the raw file. The upload already succeeded, so an archive
	// failure is logged, not surfaced.
	fileURL := ""
	if h.S3Uploader != nil {
		objectKey := fmt.Sprintf("uploads/%s/%s", batchID, fileHeader.Filename)
		fileURL, err = h.S3Uploader.UploadFile(c.Request.Context(), bytes.NewReader(raw), objectKey, "text/csv")
		if err != nil {
			log.Printf("Failed to archive upload %s: %v", batchID, err)
			fileURL = ""
		}
	}

	batch := models.UploadBatch{
		BatchID:    batchID,
		Filename:   fileHeader.Filename,
		WardID:     wardID,
		UploadedBy: c.GetString(middleware.ContextUserID),
		FileURL:    fileURL,
		TotalRows:  len(rows) - 1,
		Inserted:   len(docs),
		Skipped:    skipped,
		CreatedAt:  now,
	}
	if _, err := h.DB.Collection("upload_batches").InsertOne(context.Background(), batch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record upload batch"})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// GetUploadHistory lists past upload batches, newest first.
func (h *PropertyHandler) GetUploadHistory(c *gin.Context) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := h.DB.Collection("upload_batches").Find(context.Background(), bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query upload history"})
		return
	}
	defer cursor.Close(context.Background())

	var batches []models.UploadBatch
	if err = cursor.All(context.Background(), &batches); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode upload history"})
		return
	}

	if batches == nil {
		batches = []models.UploadBatch{}
	}

	c.JSON(http.StatusOK, batches)
}

// DeleteUploadBatch rolls back one upload: the batch record and every
// property it created.
func (h *PropertyHandler) DeleteUploadBatch(c *gin.Context) {
	batchID := c.Param("id")

	result, err := h.DB.Collection("upload_batches").DeleteOne(context.Background(), bson.M{"batchID": batchID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete upload batch"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Upload batch not found"})
		return
	}

	removed, err := h.DB.Collection("properties").DeleteMany(context.Background(), bson.M{"uploadBatchID": batchID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete batch properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Upload batch deleted successfully",
		"propertiesRemoved": removed.DeletedCount,
	})
}

// mustObjectID parses hex into an ObjectID, returning the zero id on
// garbage input so lookups simply miss.
func mustObjectID(hex string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
