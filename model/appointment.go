package model

import "gorm.io/gorm"

// Appointment status values. A booking starts Pending and is moved to
// Confirmed by the owning doctor. Nothing currently advances to Completed.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
)

// Appointment links a patient, a doctor, and one availability window
// @Description Appointment information
type Appointment struct {
	gorm.Model
	DoctorID       uint          `json:"doctor_id" gorm:"column:doctor_id;not null"`
	Doctor         *User         `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
	PatientID      uint          `json:"patient_id" gorm:"column:patient_id;not null"`
	Patient        *User         `json:"-" gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
	AvailabilityID uint          `json:"availability_id" gorm:"column:availability_id;not null"`
	Availability   *Availability `json:"-" gorm:"foreignKey:AvailabilityID;constraint:OnDelete:CASCADE"`
	Symptoms       string        `json:"symptoms" gorm:"column:symptoms;type:text"`
	Status         string        `json:"status" gorm:"column:status;type:varchar(50);default:Pending"`
}
