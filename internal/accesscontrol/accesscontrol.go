// Package accesscontrol holds the role and ownership rules as pure
// functions, so every handler authorizes the same way and the rules can be
// tested without a database.
package accesscontrol

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated principal a request acts as.
type Actor struct {
	ID   int64
	Role Role
}

// ValidRole reports whether a role string is one of the closed role set.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleCustomer, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// CanManageVenue: the venue's owner or an admin may edit or delete it.
func CanManageVenue(actor Actor, venueOwnerID int64) bool {
	return actor.Role == RoleAdmin || (actor.Role == RoleOwner && actor.ID == venueOwnerID)
}

// CanViewVenueBookings: a venue's bookings and inquiries are visible to its
// owner and to admins only.
func CanViewVenueBookings(actor Actor, venueOwnerID int64) bool {
	return CanManageVenue(actor, venueOwnerID)
}

// CanTransitionBooking: only the venue's owner or an admin may move a
// booking through its status machine.
func CanTransitionBooking(actor Actor, venueOwnerID int64) bool {
	return CanManageVenue(actor, venueOwnerID)
}

// CanCancelBooking: a customer may cancel their own booking.
func CanCancelBooking(actor Actor, bookingCustomerID int64) bool {
	return actor.ID == bookingCustomerID
}

// CanEditReview: reviews are editable by their author only.
func CanEditReview(actor Actor, reviewAuthorID int64) bool {
	return actor.ID == reviewAuthorID
}

// CanDeleteReview: the author or an admin.
func CanDeleteReview(actor Actor, reviewAuthorID int64) bool {
	return actor.ID == reviewAuthorID || actor.Role == RoleAdmin
}

// CanModerate gates platform-wide admin surfaces (venue approval, full
// booking list, contact messages).
func CanModerate(actor Actor) bool {
	return actor.Role == RoleAdmin
}
