// server/internal/models/property.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery status of a property.
const (
	PropertyPending   = "Pending"
	PropertyDelivered = "Delivered"
	PropertyNotFound  = "Not Found"
)

// Property is one billable premises inside a ward. UploadBatchID records
// which bulk upload created it so the batch can be rolled back.
type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WardID        string             `bson:"wardID" json:"wardID"`
	OwnerName     string             `bson:"ownerName" json:"ownerName"`
	Address       string             `bson:"address" json:"address"`
	FatherName    string             `bson:"fatherName,omitempty" json:"fatherName,omitempty"`
	HouseNumber   string             `bson:"houseNumber,omitempty" json:"houseNumber,omitempty"`
	Mobile        string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Status        string             `bson:"status" json:"status"`
	UploadBatchID string             `bson:"uploadBatchID,omitempty" json:"uploadBatchID,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UploadBatch is the record of one bulk property upload.
type UploadBatch struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID    string             `bson:"batchID" json:"batchID"`
	Filename   string             `bson:"filename" json:"filename"`
	WardID     string             `bson:"wardID" json:"wardID"`
	UploadedBy string             `bson:"uploadedBy" json:"uploadedBy"`
	FileURL    string             `bson:"fileURL,omitempty" json:"fileURL,omitempty"`
	TotalRows  int                `bson:"totalRows" json:"totalRows"`
	Inserted   int                `bson:"inserted" json:"inserted"`
	Skipped    int                `bson:"skipped" json:"skipped"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
