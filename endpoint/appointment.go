package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

type BookAppointmentRequest struct {
	DoctorID       uint   `json:"doctor_id" binding:"required" example:"1"`
	AvailabilityID uint   `json:"availability_id" binding:"required" example:"1"`
	Symptoms       string `json:"symptoms" example:"persistent headache"`
	// PatientID is accepted but ignored; the server always books for the
	// authenticated caller.
	PatientID uint `json:"patient_id,omitempty"`
}

type BookAppointmentResponse struct {
	AppointmentID uint   `json:"appointment_id" example:"1"`
	Status        string `json:"status" example:"Pending"`
}

// BookAppointment godoc
// @Summary      Book an appointment
// @Description  Book an appointment against a doctor's availability slot; the patient is always the caller
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BookAppointmentRequest true "Booking details"
// @Success      201 {object} util.APIResponse{data=BookAppointmentResponse} "Appointment booked"
// @Failure      400 {object} util.APIResponse "Invalid doctor or availability reference"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /book-appointment/ [post]
func BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patientID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	var doctor model.User
	if err := db.First(&doctor, req.DoctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Invalid doctor reference",
				Err: fmt.Errorf("doctor %d not found", req.DoctorID),
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return
	}
	if !doctor.IsDoctor() {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid doctor reference",
			Err: fmt.Errorf("user %d is not a doctor", req.DoctorID),
		})
		return
	}

	var slot model.Availability
	if err := db.First(&slot, req.AvailabilityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Invalid availability reference",
				Err: fmt.Errorf("availability %d not found", req.AvailabilityID),
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve availability", Err: err})
		return
	}
	if slot.DoctorID != doctor.ID {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Availability does not belong to the given doctor",
			Err: fmt.Errorf("availability %d belongs to doctor %d", slot.ID, slot.DoctorID),
		})
		return
	}

	// The patient is always the authenticated caller, regardless of payload.
	appointment := model.Appointment{
		DoctorID:       doctor.ID,
		PatientID:      patientID,
		AvailabilityID: slot.ID,
		Symptoms:       req.Symptoms,
		Status:         model.StatusPending,
	}

	if err := db.Create(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to book appointment", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Appointment booked successfully",
		Data: BookAppointmentResponse{AppointmentID: appointment.ID, Status: appointment.Status},
	})
}

// ValidateAppointment godoc
// @Summary      Confirm an appointment
// @Description  The owning doctor confirms a booked appointment; confirming twice is a no-op
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        appointment_id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment confirmed"
// @Failure      400 {object} util.APIResponse "Invalid appointment id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Caller is not the appointment's doctor"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointments/validate/{appointment_id}/ [patch]
func ValidateAppointment(c *gin.Context) {
	appointmentID, err := parseIDParam(c, "appointment_id")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	// Not-found is reported before the permission check.
	appointment, ok := fetchAppointmentByID(c, db, appointmentID)
	if !ok {
		return
	}
	if !requireAppointmentDoctor(c, appointment, "validate") {
		return
	}

	appointment.Status = model.StatusConfirmed
	if err := db.Save(appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointment validated successfully",
		Data: map[string]interface{}{"appointment_id": appointment.ID, "status": appointment.Status},
	})
}

// PatientInfoResponse couples a patient's identity fields with the symptoms
// recorded on the appointment used to look them up.
type PatientInfoResponse struct {
	PatientInfo PatientProfileResponse `json:"patient_info"`
	Symptoms    string                 `json:"symptoms"`
}

// GetPatientInfo godoc
// @Summary      Patient info by appointment
// @Description  Return the patient identity and symptoms for one of the caller's appointments
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        appointment_id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=PatientInfoResponse} "Patient info retrieved"
// @Failure      400 {object} util.APIResponse "Invalid appointment id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Caller is not the appointment's doctor"
// @Failure      404 {object} util.APIResponse "Appointment or patient not found"
// @Router       /patient/{appointment_id}/ [get]
func GetPatientInfo(c *gin.Context) {
	appointmentID, err := parseIDParam(c, "appointment_id")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appointment, ok := fetchAppointmentByID(c, db, appointmentID)
	if !ok {
		return
	}
	if !requireAppointmentDoctor(c, appointment, "view the patient of") {
		return
	}

	var patient model.User
	if err := db.First(&patient, appointment.PatientID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found or invalid role", Err: err})
		return
	}
	if !patient.IsPatient() {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Patient not found or invalid role",
			Err: fmt.Errorf("linked account is not a patient"),
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Patient info retrieved",
		Data: PatientInfoResponse{
			PatientInfo: toPatientProfile(&patient),
			Symptoms:    appointment.Symptoms,
		},
	})
}
