package model

import "gorm.io/gorm"

// Treatment represents a medication record attached to an appointment
// @Description Treatment information
type Treatment struct {
	gorm.Model
	AppointmentID  uint         `json:"appointment_id" gorm:"column:appointment_id;not null"`
	Appointment    *Appointment `json:"-" gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE"`
	MedicationName string       `json:"medication_name" gorm:"column:medication_name;not null" example:"Amoxicillin"`
	DosagePerDay   int          `json:"dosage_per_day" gorm:"column:dosage_per_day;not null" example:"3"`
	DurationInDays int          `json:"duration_in_days" gorm:"column:duration_in_days;not null" example:"7"`
	Notes          string       `json:"notes" gorm:"column:notes;type:text" example:"Take after meals"`
}

// TreatmentRequest represents one treatment item in an add-treatments request
// @Description Treatment request information
type TreatmentRequest struct {
	MedicationName string `json:"medication_name" example:"Amoxicillin"`
	DosagePerDay   int    `json:"dosage_per_day" example:"3"`
	DurationInDays int    `json:"duration_in_days" example:"7"`
	Notes          string `json:"notes,omitempty" example:"Take after meals"`
}

// PatientTreatmentEntry is one row of the flattened per-patient treatment list,
// joining the treatment with the appointment it belongs to.
type PatientTreatmentEntry struct {
	AppointmentID  uint   `json:"appointment_id" gorm:"column:appointment_id"`
	MedicationName string `json:"medication_name" gorm:"column:medication_name"`
	DosagePerDay   int    `json:"dosage_per_day" gorm:"column:dosage_per_day"`
	DurationInDays int    `json:"duration_in_days" gorm:"column:duration_in_days"`
	Notes          string `json:"notes" gorm:"column:notes"`
}
