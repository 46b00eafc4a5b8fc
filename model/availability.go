package model

import (
	"time"

	"gorm.io/gorm"
)

// Availability represents a doctor-declared bookable time window.
// The composite unique index rejects exact-duplicate slots for the same
// doctor; overlapping windows are allowed.
type Availability struct {
	gorm.Model
	DoctorID  uint      `json:"doctor_id" gorm:"column:doctor_id;not null;uniqueIndex:idx_doctor_slot;constraint:OnDelete:CASCADE"`
	Doctor    *User     `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
	StartTime time.Time `json:"start_time" gorm:"column:start_time;not null;uniqueIndex:idx_doctor_slot"`
	EndTime   time.Time `json:"end_time" gorm:"column:end_time;not null;uniqueIndex:idx_doctor_slot"`
}
