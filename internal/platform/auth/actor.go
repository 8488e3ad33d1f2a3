package auth

import (
	"github.com/google/uuid"
)

// Role is the resolved role of an authenticated actor.
type Role string

const (
	// RoleMedico identifies a clinician.
	RoleMedico Role = "medico"
	// RoleAdmin identifies an administrative user who bypasses
	// clinician-of-record checks.
	RoleAdmin Role = "admin"
	// RoleUnprivileged identifies an authenticated user with neither role.
	RoleUnprivileged Role = "unprivileged"
)

// Actor is the identity acting on a request, resolved once at the
// middleware boundary from token claims. Handlers and services never probe
// raw claims; they consume this value.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// IsAdmin reports whether the actor holds the administrative role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsMedico reports whether the actor is a clinician.
func (a Actor) IsMedico() bool { return a.Role == RoleMedico }

// CanManage is the shared authorization predicate for record-scoped
// operations: the actor must be the clinician of record on the historial,
// or hold the administrative role. A nil medicoID (clinician deleted)
// leaves only the administrative path.
func CanManage(medicoID *uuid.UUID, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return IsClinicianOfRecord(medicoID, actor)
}

// IsClinicianOfRecord reports strict clinician-of-record equality with no
// administrative bypass. The nutrition upsert path uses this check alone.
func IsClinicianOfRecord(medicoID *uuid.UUID, actor Actor) bool {
	if !actor.IsMedico() {
		return false
	}
	return medicoID != nil && *medicoID == actor.ID
}
