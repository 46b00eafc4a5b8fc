package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/medibook/medibook/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullBookingFlow walks the whole happy path: two accounts, a published
// slot, a booking, the doctor's confirmation, a prescription, and both sides'
// read views.
func TestFullBookingFlow(t *testing.T) {
	r, db := setupEndpointTest(t)

	registerAccount(t, r, "d@x.com", "doctorpass", "doctor")
	registerAccount(t, r, "p@x.com", "patientpass", "patient")

	doctorToken := loginAccount(t, r, "d@x.com", "doctorpass")
	patientToken := loginAccount(t, r, "p@x.com", "patientpass")

	slotID := createSlot(t, r, doctorToken, "2024-01-01T10:00:00Z", "2024-01-01T10:30:00Z")
	doctorID := userIDByEmail(t, db, "d@x.com")

	// Patient books the slot.
	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       doctorID,
		"availability_id": slotID,
		"symptoms":        "migraine and nausea",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, model.StatusPending, data["status"])
	appointmentID := uint(data["appointment_id"].(float64))

	// Doctor confirms.
	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("/appointments/validate/%d/", appointmentID), nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusConfirmed, responseData(t, w)["status"])

	// Doctor prescribes.
	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/add-treatments/%d/", appointmentID), map[string]interface{}{
		"treatments": []map[string]interface{}{
			{"medication_name": "Sumatriptan", "dosage_per_day": 1, "duration_in_days": 10},
		},
	}, doctorToken)
	require.Equal(t, http.StatusCreated, w.Code)

	// Doctor reviews the patient's details for the appointment.
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/patient/%d/", appointmentID), nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	info := responseData(t, w)
	assert.Equal(t, "migraine and nausea", info["symptoms"])
	patientInfo := info["patient_info"].(map[string]interface{})
	assert.Equal(t, "p@x.com", patientInfo["email"])

	// Patient sees the prescription in their treatment history.
	w = doRequest(t, r, http.MethodGet, "/treatments/", nil, patientToken)
	require.Equal(t, http.StatusOK, w.Code)
	history := responseData(t, w)
	assert.Equal(t, float64(1), history["total"])
}
