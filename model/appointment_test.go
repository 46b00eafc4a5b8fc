package model

import (
	"testing"
	"time"
)

func TestAppointmentStatusDefaultsToPending(t *testing.T) {
	db := setupTestDB(t, "appointment_status", &User{}, &Availability{}, &Appointment{})

	doctor := User{Email: "dr@example.com", Role: RoleDoctor}
	patient := User{Email: "pt@example.com", Role: RolePatient}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}

	slot := Availability{
		DoctorID:  doctor.ID,
		StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
	}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}

	appt := Appointment{DoctorID: doctor.ID, PatientID: patient.ID, AvailabilityID: slot.ID, Symptoms: "headache"}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	var stored Appointment
	if err := db.First(&stored, appt.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("expected default status %q, got %q", StatusPending, stored.Status)
	}
}

func TestAppointmentStatusTransition(t *testing.T) {
	db := setupTestDB(t, "appointment_transition", &User{}, &Availability{}, &Appointment{})

	doctor := User{Email: "dr@example.com", Role: RoleDoctor}
	patient := User{Email: "pt@example.com", Role: RolePatient}
	db.Create(&doctor)
	db.Create(&patient)

	slot := Availability{
		DoctorID:  doctor.ID,
		StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
	}
	db.Create(&slot)

	appt := Appointment{DoctorID: doctor.ID, PatientID: patient.ID, AvailabilityID: slot.ID, Status: StatusPending}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	appt.Status = StatusConfirmed
	if err := db.Save(&appt).Error; err != nil {
		t.Fatalf("confirm appointment: %v", err)
	}

	var stored Appointment
	if err := db.First(&stored, appt.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if stored.Status != StatusConfirmed {
		t.Fatalf("expected status %q, got %q", StatusConfirmed, stored.Status)
	}
}
