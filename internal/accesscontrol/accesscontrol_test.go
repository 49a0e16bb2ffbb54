package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	admin    = Actor{ID: 1, Role: RoleAdmin}
	owner    = Actor{ID: 2, Role: RoleOwner}
	customer = Actor{ID: 3, Role: RoleCustomer}
)

func TestCanManageVenue(t *testing.T) {
	assert.True(t, CanManageVenue(owner, owner.ID), "owner manages own venue")
	assert.False(t, CanManageVenue(owner, 99), "owner cannot manage someone else's venue")
	assert.True(t, CanManageVenue(admin, 99), "admin manages any venue")
	assert.False(t, CanManageVenue(customer, customer.ID), "customer never manages venues")
}

func TestCanViewVenueBookings(t *testing.T) {
	assert.True(t, CanViewVenueBookings(owner, owner.ID))
	assert.True(t, CanViewVenueBookings(admin, 99))
	assert.False(t, CanViewVenueBookings(customer, 99))
	assert.False(t, CanViewVenueBookings(owner, 99))
}

func TestCanTransitionBooking(t *testing.T) {
	assert.True(t, CanTransitionBooking(owner, owner.ID))
	assert.True(t, CanTransitionBooking(admin, 99))
	assert.False(t, CanTransitionBooking(customer, 99))
}

func TestCanCancelBooking(t *testing.T) {
	assert.True(t, CanCancelBooking(customer, customer.ID))
	assert.False(t, CanCancelBooking(customer, 99), "cannot cancel another customer's booking")
	assert.False(t, CanCancelBooking(admin, 99), "cancellation goes through the transition path for staff")
}

func TestReviewPermissions(t *testing.T) {
	assert.True(t, CanEditReview(customer, customer.ID))
	assert.False(t, CanEditReview(admin, 99), "admins cannot edit others' reviews")

	assert.True(t, CanDeleteReview(customer, customer.ID))
	assert.True(t, CanDeleteReview(admin, 99))
	assert.False(t, CanDeleteReview(owner, 99))
}

func TestCanModerate(t *testing.T) {
	assert.True(t, CanModerate(admin))
	assert.False(t, CanModerate(owner))
	assert.False(t, CanModerate(customer))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("customer"))
	assert.True(t, ValidRole("owner"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
