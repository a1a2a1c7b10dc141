// server/internal/models/payout.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PayoutPending = "pending"
	PayoutPaid    = "paid"
)

// Payout is one staff member's payment line for a period.
// Amount = DeliveredCount * RatePerDelivery; the rate comes from config
// and is frozen into the document at generation time.
type Payout struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StaffID         string             `bson:"staffID" json:"staffID"`
	StaffName       string             `bson:"staffName" json:"staffName"`
	PeriodFrom      time.Time          `bson:"periodFrom" json:"periodFrom"`
	PeriodTo        time.Time          `bson:"periodTo" json:"periodTo"`
	DeliveredCount  int                `bson:"deliveredCount" json:"deliveredCount"`
	RatePerDelivery float64            `bson:"ratePerDelivery" json:"ratePerDelivery"`
	Amount          float64            `bson:"amount" json:"amount"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// CanMarkPaid reports whether the payout is still awaiting payment.
func (p *Payout) CanMarkPaid() bool {
	return p.Status == PayoutPending
}
