package models

import "gorm.io/gorm"

// Deletes never rely on engine-level ON DELETE rules: SQLite runs without
// foreign key enforcement by default while MySQL and Postgres reject orphaning
// deletes. Children are removed explicitly, in dependency order, inside the
// caller's transaction.

// DeleteEventCascade removes an event together with its participations.
func DeleteEventCascade(tx *gorm.DB, eventID uint) error {
	if err := tx.Where("event_id = ?", eventID).Delete(&EventParticipation{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Event{}, eventID).Error
}

// DeleteNGOCascade removes an NGO, its events with their participations and
// its projects.
func DeleteNGOCascade(tx *gorm.DB, ngoID uint) error {
	eventIDs := tx.Model(&Event{}).Select("id").Where("ngo_id = ?", ngoID)
	if err := tx.Where("event_id IN (?)", eventIDs).Delete(&EventParticipation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("ngo_id = ?", ngoID).Delete(&Event{}).Error; err != nil {
		return err
	}
	if err := tx.Where("ngo_id = ?", ngoID).Delete(&Project{}).Error; err != nil {
		return err
	}
	return tx.Delete(&NGO{}, ngoID).Error
}

// DeleteUserCascade removes a user with everything they own. Approved seats
// the user held are released so event capacity stays consistent.
func DeleteUserCascade(tx *gorm.DB, userID uint) error {
	var ngoIDs []uint
	if err := tx.Model(&NGO{}).Where("user_id = ?", userID).Pluck("id", &ngoIDs).Error; err != nil {
		return err
	}
	for _, id := range ngoIDs {
		if err := DeleteNGOCascade(tx, id); err != nil {
			return err
		}
	}

	var approvedEventIDs []uint
	if err := tx.Model(&EventParticipation{}).
		Where("user_id = ? AND status = ?", userID, ParticipationApproved).
		Pluck("event_id", &approvedEventIDs).Error; err != nil {
		return err
	}
	if len(approvedEventIDs) > 0 {
		if err := tx.Model(&Event{}).
			Where("id IN ? AND approved_count > 0", approvedEventIDs).
			UpdateColumn("approved_count", gorm.Expr("approved_count - 1")).Error; err != nil {
			return err
		}
	}

	for _, model := range []interface{}{&EventParticipation{}, &Notification{}, &RefreshToken{}} {
		if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(&AuditLog{}).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&User{}, userID).Error
}
