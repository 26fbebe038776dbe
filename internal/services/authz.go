package services

import (
	"errors"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

// Principal is the authenticated caller as resolved by the auth gate.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func (p Principal) IsStaff() bool { return models.IsStaffRole(p.Role) }

// OwnsNGO reports whether p is the user that registered ngo.
func (p Principal) OwnsNGO(ngo *models.NGO) bool {
	return ngo != nil && p.UserID != 0 && ngo.UserID == p.UserID
}

// OwnsEvent requires event.NGO to be loaded.
func (p Principal) OwnsEvent(event *models.Event) bool {
	return event != nil && p.OwnsNGO(event.NGO)
}

// CanManageNGO: the owner edits the profile, admins edit anything.
func (p Principal) CanManageNGO(ngo *models.NGO) bool {
	return p.IsAdmin() || p.OwnsNGO(ngo)
}

// CanManageEvent: participations of an event are reviewed by its NGO owner or
// an admin.
func (p Principal) CanManageEvent(event *models.Event) bool {
	return p.IsAdmin() || p.OwnsEvent(event)
}

// CanSeeEvent: drafts and cancelled events stay visible to owner and staff.
func (p *Principal) CanSeeEvent(event *models.Event) bool {
	if event.IsPublic() {
		return true
	}
	return p != nil && (p.IsStaff() || p.OwnsEvent(event))
}

// CanSeeNGO: only approved NGOs are public.
func (p *Principal) CanSeeNGO(ngo *models.NGO) bool {
	if ngo.Status == models.NGOStatusApproved {
		return true
	}
	return p != nil && (p.IsStaff() || p.OwnsNGO(ngo))
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound application error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(msg)
	}
	return err
}
