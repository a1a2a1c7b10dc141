// server/internal/delivery/recorder.go

// Package delivery implements the recording of delivery attempts:
// the one-record-per-property precondition, zone denormalization and
// the property status flip, behind a store so the rules are testable
// without MongoDB.
package delivery

import (
	"context"
	"errors"
	"time"

	"bill-delivery-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrAlreadyRecorded  = errors.New("a delivery is already recorded for this property")
)

// Store is the persistence the recorder needs. FindProperty returns
// (nil, nil) when the property does not exist; ZoneOfWard returns ""
// for an unknown ward.
type Store interface {
	FindProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	HasDelivery(ctx context.Context, propertyID string) (bool, error)
	ZoneOfWard(ctx context.Context, wardID string) (string, error)
	InsertDelivery(ctx context.Context, d *models.Delivery) (primitive.ObjectID, error)
	SetPropertyStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error
}

// Attempt is one validated delivery submission from a staff member.
type Attempt struct {
	StaffID        string
	DataSource     string
	ReceiverName   string
	ReceiverMobile string
	PhotoURL       string
	Location       models.GeoPoint
	Remarks        string
}

type Recorder struct {
	Store Store
}

// Record persists one delivery attempt. The property must exist and
// must not have a delivery yet; on success its status flips to
// Delivered or Not Found depending on the data source, and the new
// record starts its correction lifecycle at none.
func (r *Recorder) Record(ctx context.Context, propertyOID primitive.ObjectID, attempt Attempt) (*models.Delivery, error) {
	property, err := r.Store.FindProperty(ctx, propertyOID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	has, err := r.Store.HasDelivery(ctx, propertyOID.Hex())
	if err != nil {
		return nil, err
	}
	if has {
		return nil, ErrAlreadyRecorded
	}

	// The zone is denormalized onto the delivery so analytics can roll
	// up without joining wards. Best effort: a missing ward leaves it
	// empty.
	zone, err := r.Store.ZoneOfWard(ctx, property.WardID)
	if err != nil {
		zone = ""
	}

	now := time.Now()
	record := &models.Delivery{
		PropertyID:     propertyOID.Hex(),
		StaffID:        attempt.StaffID,
		WardID:         property.WardID,
		Zone:           zone,
		DeliveredAt:    now,
		DataSource:     attempt.DataSource,
		ReceiverName:   attempt.ReceiverName,
		ReceiverMobile: attempt.ReceiverMobile,
		PhotoURL:       attempt.PhotoURL,
		Location:       attempt.Location,
		Remarks:        attempt.Remarks,
		Correction:     models.Correction{Status: models.CorrectionNone},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := r.Store.InsertDelivery(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	if err := r.Store.SetPropertyStatus(ctx, propertyOID, models.PropertyStatusFor(attempt.DataSource), now); err != nil {
		return nil, err
	}

	return record, nil
}
