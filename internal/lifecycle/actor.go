package lifecycle

import (
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// ParticipatingRole is the only role that may register for and submit to campaigns.
const ParticipatingRole = models.RoleStudent

// Actor is the identity a decision or command is evaluated for. A nil *Actor
// is an unauthenticated caller.
type Actor struct {
	ID                 string
	Role               models.UserRole
	VerificationStatus models.VerificationStatus
}

// ActorFromUser builds an Actor from an authenticated user, or nil.
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		ID:                 u.ID,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
	}
}

// CanReview reports whether the actor holds review capability.
func (a *Actor) CanReview() bool {
	return a != nil && (a.Role == models.RoleReviewer || a.Role == models.RoleAdmin)
}

// IsParticipant reports whether the actor holds the participating role.
func (a *Actor) IsParticipant() bool {
	return a != nil && a.Role == ParticipatingRole
}
