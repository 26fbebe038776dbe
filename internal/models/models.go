package models

// Roles
const (
	RoleVolunteer = "VOLUNTEER"
	RoleNGO       = "NGO"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// NGO statuses
const (
	NGOStatusPending  = "PENDING"
	NGOStatusApproved = "APPROVED"
	NGOStatusRejected = "REJECTED"
	NGOStatusBlocked  = "BLOCKED"
)

// Event statuses. Nothing transitions an event into COMPLETED yet.
const (
	EventStatusDraft     = "DRAFT"
	EventStatusPublished = "PUBLISHED"
	EventStatusCancelled = "CANCELLED"
	EventStatusCompleted = "COMPLETED"
)

// Participation statuses
const (
	ParticipationPending  = "PENDING"
	ParticipationApproved = "APPROVED"
	ParticipationRejected = "REJECTED"
)

// Notification types
const (
	NotificationNGOApproved           = "NGO_APPROVED"
	NotificationNGORejected           = "NGO_REJECTED"
	NotificationNGOBlocked            = "NGO_BLOCKED"
	NotificationEventApproved         = "EVENT_APPROVED"
	NotificationEventRejected         = "EVENT_REJECTED"
	NotificationParticipationApproved = "PARTICIPATION_APPROVED"
	NotificationParticipationRejected = "PARTICIPATION_REJECTED"
	NotificationNewVolunteer          = "NEW_VOLUNTEER"
	NotificationEventReminder         = "EVENT_REMINDER"
)

// Auth providers
const (
	AuthProviderLocal = "local"
	AuthProviderVK    = "vk"
)

// IsStaffRole reports whether role may moderate content.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleVolunteer, RoleNGO, RoleAdmin, RoleModerator:
		return true
	}
	return false
}
