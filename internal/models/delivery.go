// server/internal/models/delivery.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Who confirmed the delivery on the doorstep.
const (
	SourceOwner    = "owner"
	SourceFamily   = "family"
	SourceTenant   = "tenant"
	SourceNotFound = "not_found"
)

// Correction lifecycle of a delivery record.
const (
	CorrectionNone     = "none"
	CorrectionPending  = "pending"
	CorrectionApproved = "approved"
	CorrectionRejected = "rejected"
)

// Delivery is one recorded attempt by a staff member to deliver a bill
// at a property, with photo and GPS proof.
type Delivery struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID     string             `bson:"propertyID" json:"propertyID"`
	StaffID        string             `bson:"staffID" json:"staffID"`
	WardID         string             `bson:"wardID" json:"wardID"`
	Zone           string             `bson:"zone,omitempty" json:"zone,omitempty"`
	DeliveredAt    time.Time          `bson:"deliveredAt" json:"deliveredAt"`
	DataSource     string             `bson:"dataSource" json:"dataSource"`
	ReceiverName   string             `bson:"receiverName,omitempty" json:"receiverName,omitempty"`
	ReceiverMobile string             `bson:"receiverMobile,omitempty" json:"receiverMobile,omitempty"`
	PhotoURL       string             `bson:"photoURL" json:"photoURL"`
	Location       GeoPoint           `bson:"location" json:"location"`
	Remarks        string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Correction     Correction         `bson:"correction" json:"correction"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Correction tracks one post-submission edit request on a delivery.
type Correction struct {
	Status      string             `bson:"status" json:"status"`
	Changes     *CorrectionChanges `bson:"changes,omitempty" json:"changes,omitempty"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ReviewedBy  string             `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	RequestedAt *time.Time         `bson:"requestedAt,omitempty" json:"requestedAt,omitempty"`
	ReviewedAt  *time.Time         `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

// CorrectionChanges holds the field values a staff member wants changed.
// Empty fields are left untouched when the request is approved.
type CorrectionChanges struct {
	DataSource     string `bson:"dataSource,omitempty" json:"dataSource,omitempty"`
	ReceiverName   string `bson:"receiverName,omitempty" json:"receiverName,omitempty"`
	ReceiverMobile string `bson:"receiverMobile,omitempty" json:"receiverMobile,omitempty"`
	Remarks        string `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// ValidDataSource reports whether src is a known data source.
func ValidDataSource(src string) bool {
	switch src {
	case SourceOwner, SourceFamily, SourceTenant, SourceNotFound:
		return true
	}
	return false
}

// Delivered reports whether the attempt actually reached someone,
// i.e. the data source is anything but not_found.
func (d *Delivery) Delivered() bool {
	return d.DataSource != SourceNotFound
}

// CanRequestCorrection reports whether a staff edit request is legal in
// the current lifecycle state. A fresh record and a rejected edit may be
// (re-)requested; pending and approved may not.
func (c Correction) CanRequestCorrection() bool {
	return c.Status == CorrectionNone || c.Status == CorrectionRejected
}

// CanReview reports whether an admin review is legal: only a pending
// request can be approved or rejected.
func (c Correction) CanReview() bool {
	return c.Status == CorrectionPending
}

// PropertyStatusFor maps a data source to the property status it implies.
func PropertyStatusFor(dataSource string) string {
	if dataSource == SourceNotFound {
		return PropertyNotFound
	}
	return PropertyDelivered
}
