package services

import (
	"context"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

// Gate turns a token into an acting user and enforces role requirements.
type Gate struct {
	sessions *SessionStore
}

// Authorize resolves token and, when roles are given, requires the user to
// hold one of them.
func (g *Gate) Authorize(ctx context.Context, token string, roles ...models.Role) (*models.User, error) {
	user, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !hasRole(user, roles...) {
		return nil, apperrors.New(apperrors.Forbidden, "insufficient role")
	}
	return user, nil
}

// Action names an operation on an appointment.
type Action string

const (
	ActionBook     Action = "book"
	ActionView     Action = "view"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// Party is the relationship between a user and one appointment.
type Party uint8

const (
	PartyPatient Party = 1 << iota
	PartyDoctor
)

// Permission lists who may perform an action: any user holding one of
// Roles, or a user who is one of Parties to the appointment.
type Permission struct {
	Roles   []models.Role
	Parties Party
}

var admins = []models.Role{models.RoleAdmin}

// Permissions is the actor table for appointment operations.
var Permissions = map[Action]Permission{
	ActionBook:     {Roles: []models.Role{models.RolePatient}},
	ActionView:     {Roles: admins, Parties: PartyPatient | PartyDoctor},
	ActionApprove:  {Roles: admins, Parties: PartyDoctor},
	ActionReject:   {Roles: admins, Parties: PartyDoctor},
	ActionCancel:   {Roles: admins, Parties: PartyPatient | PartyDoctor},
	ActionComplete: {Roles: admins, Parties: PartyDoctor},
}

// PartiesOf reports how user relates to appt. The role must agree with the
// side: a patient is never the doctor party and vice versa.
func PartiesOf(user *models.User, appt *models.Appointment) Party {
	var p Party
	if user == nil || appt == nil {
		return p
	}
	if user.Role == models.RolePatient && appt.PatientID == user.ID {
		p |= PartyPatient
	}
	if user.Role == models.RoleDoctor && appt.DoctorID == user.ID {
		p |= PartyDoctor
	}
	return p
}

// Allowed reports whether user may perform action on appt. appt may be nil
// for actions that are not tied to an existing appointment.
func Allowed(user *models.User, action Action, appt *models.Appointment) bool {
	perm, ok := Permissions[action]
	if !ok || user == nil {
		return false
	}
	if hasRole(user, perm.Roles...) {
		return true
	}
	return PartiesOf(user, appt)&perm.Parties != 0
}

func hasRole(user *models.User, roles ...models.Role) bool {
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}

func requireRole(user *models.User, roles ...models.Role) error {
	if user == nil {
		return apperrors.New(apperrors.Unauthenticated, "authentication required")
	}
	if !hasRole(user, roles...) {
		return apperrors.New(apperrors.Forbidden, "insufficient role")
	}
	return nil
}
