package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// bookingFixture registers a doctor and a patient, opens one slot and returns
// everything the appointment tests need.
type bookingFixture struct {
	DoctorID       uint
	PatientID      uint
	AvailabilityID uint
	DoctorToken    string
	PatientToken   string
}

func newBookingFixture(t *testing.T, r *gin.Engine, db *gorm.DB) bookingFixture {
	t.Helper()

	registerAccount(t, r, "doc@example.com", "password123", "doctor")
	registerAccount(t, r, "patient@example.com", "password123", "patient")
	doctorToken := loginAccount(t, r, "doc@example.com", "password123")
	patientToken := loginAccount(t, r, "patient@example.com", "password123")

	slotID := createSlot(t, r, doctorToken, "2024-01-01T10:00:00Z", "2024-01-01T10:30:00Z")

	return bookingFixture{
		DoctorID:       userIDByEmail(t, db, "doc@example.com"),
		PatientID:      userIDByEmail(t, db, "patient@example.com"),
		AvailabilityID: slotID,
		DoctorToken:    doctorToken,
		PatientToken:   patientToken,
	}
}

func TestBookAppointmentDefaultsToPending(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "persistent headache")

	var appointment model.Appointment
	require.NoError(t, db.First(&appointment, id).Error)
	assert.Equal(t, model.StatusPending, appointment.Status)
	assert.Equal(t, fx.DoctorID, appointment.DoctorID)
	assert.Equal(t, "persistent headache", appointment.Symptoms)
}

func TestBookAppointmentIgnoresPayloadPatientID(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	// A forged patient_id in the payload must not override the caller.
	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       fx.DoctorID,
		"availability_id": fx.AvailabilityID,
		"patient_id":      fx.DoctorID,
		"symptoms":        "cough",
	}, fx.PatientToken)
	require.Equal(t, http.StatusCreated, w.Code)

	var appointment model.Appointment
	require.NoError(t, db.Order("id DESC").First(&appointment).Error)
	assert.Equal(t, fx.PatientID, appointment.PatientID)
}

func TestBookAppointmentRejectsNonDoctorReference(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	// Naming a patient account as the doctor is a client error.
	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       fx.PatientID,
		"availability_id": fx.AvailabilityID,
	}, fx.PatientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid doctor reference")
}

func TestBookAppointmentRejectsUnknownDoctor(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       uint(9999),
		"availability_id": fx.AvailabilityID,
	}, fx.PatientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookAppointmentRejectsForeignSlot(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	registerAccount(t, r, "doc2@example.com", "password123", "doctor")
	doc2Token := loginAccount(t, r, "doc2@example.com", "password123")
	doc2Slot := createSlot(t, r, doc2Token, "2024-02-01T10:00:00Z", "2024-02-01T10:30:00Z")

	// Slot belongs to doc2, doctor_id names doc1.
	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       fx.DoctorID,
		"availability_id": doc2Slot,
	}, fx.PatientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "does not belong")
}

func TestValidateAppointment(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "fever")

	w := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/appointments/validate/%d/", id), nil, fx.DoctorToken)
	require.Equal(t, http.StatusOK, w.Code)

	var appointment model.Appointment
	require.NoError(t, db.First(&appointment, id).Error)
	assert.Equal(t, model.StatusConfirmed, appointment.Status)
}

func TestValidateAppointmentIsIdempotent(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "fever")

	first := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/appointments/validate/%d/", id), nil, fx.DoctorToken)
	second := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/appointments/validate/%d/", id), nil, fx.DoctorToken)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)

	var appointment model.Appointment
	require.NoError(t, db.First(&appointment, id).Error)
	assert.Equal(t, model.StatusConfirmed, appointment.Status)
}

func TestValidateAppointmentNotFoundBeforePermission(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	// Unknown appointment is 404 even for a caller who could never own it.
	w := doRequest(t, r, http.MethodPatch, "/appointments/validate/9999/", nil, fx.PatientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateAppointmentForbiddenForOtherDoctor(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "fever")

	registerAccount(t, r, "doc2@example.com", "password123", "doctor")
	doc2Token := loginAccount(t, r, "doc2@example.com", "password123")

	w := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/appointments/validate/%d/", id), nil, doc2Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var appointment model.Appointment
	require.NoError(t, db.First(&appointment, id).Error)
	assert.Equal(t, model.StatusPending, appointment.Status)
}

func TestGetPatientInfo(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "sore throat")

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/patient/%d/", id), nil, fx.DoctorToken)
	require.Equal(t, http.StatusOK, w.Code)

	data := responseData(t, w)
	assert.Equal(t, "sore throat", data["symptoms"])
	info, ok := data["patient_info"].(map[string]interface{})
	require.True(t, ok, "expected patient_info object")
	assert.Equal(t, "patient@example.com", info["email"])
}

func TestGetPatientInfoForbiddenForNonOwningDoctor(t *testing.T) {
	r, db := setupEndpointTest(t)
	fx := newBookingFixture(t, r, db)

	id := bookAppointment(t, r, fx.PatientToken, fx.DoctorID, fx.AvailabilityID, "sore throat")

	registerAccount(t, r, "doc2@example.com", "password123", "doctor")
	doc2Token := loginAccount(t, r, "doc2@example.com", "password123")

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/patient/%d/", id), nil, doc2Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
