package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectionLifecycle(t *testing.T) {
	// A fresh record may be requested, a rejected edit may be retried.
	assert.True(t, Correction{Status: CorrectionNone}.CanRequestCorrection())
	assert.True(t, Correction{Status: CorrectionRejected}.CanRequestCorrection())

	// Pending and approved block a new request.
	assert.False(t, Correction{Status: CorrectionPending}.CanRequestCorrection())
	assert.False(t, Correction{Status: CorrectionApproved}.CanRequestCorrection())

	// Only a pending request can be reviewed.
	assert.True(t, Correction{Status: CorrectionPending}.CanReview())
	assert.False(t, Correction{Status: CorrectionNone}.CanReview())
	assert.False(t, Correction{Status: CorrectionApproved}.CanReview())
	assert.False(t, Correction{Status: CorrectionRejected}.CanReview())
}

func TestDelivered(t *testing.T) {
	assert.True(t, (&Delivery{DataSource: SourceOwner}).Delivered())
	assert.True(t, (&Delivery{DataSource: SourceFamily}).Delivered())
	assert.True(t, (&Delivery{DataSource: SourceTenant}).Delivered())
	assert.False(t, (&Delivery{DataSource: SourceNotFound}).Delivered())
}

func TestValidDataSource(t *testing.T) {
	assert.True(t, ValidDataSource(SourceOwner))
	assert.True(t, ValidDataSource(SourceNotFound))
	assert.False(t, ValidDataSource("neighbour"))
	assert.False(t, ValidDataSource(""))
}

func TestPropertyStatusFor(t *testing.T) {
	assert.Equal(t, PropertyDelivered, PropertyStatusFor(SourceOwner))
	assert.Equal(t, PropertyDelivered, PropertyStatusFor(SourceTenant))
	assert.Equal(t, PropertyNotFound, PropertyStatusFor(SourceNotFound))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleStaff))
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleCommissioner))
	assert.False(t, ValidRole("superadmin"))
}
