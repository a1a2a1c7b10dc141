package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/delivery"
	"bill-delivery-api-server/internal/models"
	"bill-delivery-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubDeliveryStore backs the recorder with maps so handler routing can
// be exercised without MongoDB.
type stubDeliveryStore struct {
	properties map[primitive.ObjectID]*models.Property
	deliveries map[string]bool
	statuses   map[primitive.ObjectID]string
}

func newStubDeliveryStore() *stubDeliveryStore {
	return &stubDeliveryStore{
		properties: make(map[primitive.ObjectID]*models.Property),
		deliveries: make(map[string]bool),
		statuses:   make(map[primitive.ObjectID]string),
	}
}

func (s *stubDeliveryStore) FindProperty(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	return s.properties[id], nil
}

func (s *stubDeliveryStore) HasDelivery(_ context.Context, propertyID string) (bool, error) {
	return s.deliveries[propertyID], nil
}

func (s *stubDeliveryStore) ZoneOfWard(_ context.Context, _ string) (string, error) {
	return "South", nil
}

func (s *stubDeliveryStore) InsertDelivery(_ context.Context, d *models.Delivery) (primitive.ObjectID, error) {
	s.deliveries[d.PropertyID] = true
	return primitive.NewObjectID(), nil
}

func (s *stubDeliveryStore) SetPropertyStatus(_ context.Context, id primitive.ObjectID, status string, _ time.Time) error {
	s.statuses[id] = status
	return nil
}

func newDeliveryTestRouter(store *stubDeliveryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := &DeliveryHandler{
		Recorder: &delivery.Recorder{Store: store},
		Hub:      socket.NewHub(),
	}
	router := gin.New()
	router.POST("/deliveries", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "staff-1")
		handler.CreateDelivery(c)
	})
	return router
}

func postDelivery(t *testing.T, router *gin.Engine, propertyID string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"propertyID":   propertyID,
		"dataSource":   models.SourceOwner,
		"receiverName": "Ravi Kumar",
		"photoURL":     "https://cdn.example.com/photo.jpg",
		"longitude":    77.59,
		"latitude":     12.97,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/deliveries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDelivery_RecordsAndFlipsProperty(t *testing.T) {
	store := newStubDeliveryStore()
	propertyID := primitive.NewObjectID()
	store.properties[propertyID] = &models.Property{ID: propertyID, WardID: "ward-7", Status: models.PropertyPending}

	w := postDelivery(t, newDeliveryTestRouter(store), propertyID.Hex())

	require.Equal(t, http.StatusCreated, w.Code)
	var record models.Delivery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "staff-1", record.StaffID)
	assert.Equal(t, "South", record.Zone)
	assert.Equal(t, models.PropertyDelivered, store.statuses[propertyID])
}

func TestCreateDelivery_DuplicateReturnsConflict(t *testing.T) {
	store := newStubDeliveryStore()
	propertyID := primitive.NewObjectID()
	store.properties[propertyID] = &models.Property{ID: propertyID, WardID: "ward-7", Status: models.PropertyPending}
	router := newDeliveryTestRouter(store)

	require.Equal(t, http.StatusCreated, postDelivery(t, router, propertyID.Hex()).Code)
	assert.Equal(t, http.StatusConflict, postDelivery(t, router, propertyID.Hex()).Code)
}

func TestCreateDelivery_UnknownPropertyReturnsNotFound(t *testing.T) {
	w := postDelivery(t, newDeliveryTestRouter(newStubDeliveryStore()), primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDelivery_RejectsBadDataSource(t *testing.T) {
	router := newDeliveryTestRouter(newStubDeliveryStore())
	body, err := json.Marshal(gin.H{
		"propertyID": primitive.NewObjectID().Hex(),
		"dataSource": "postman",
		"photoURL":   "https://cdn.example.com/photo.jpg",
		"longitude":  77.59,
		"latitude":   12.97,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/deliveries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
