package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

type AddTreatmentsRequest struct {
	Treatments []model.TreatmentRequest `json:"treatments"`
}

// validateTreatmentItem checks a single treatment item, returning a
// field-level error for the first problem found.
func validateTreatmentItem(index int, item model.TreatmentRequest) error {
	if item.MedicationName == "" {
		return fmt.Errorf("treatments[%d]: medication_name is required", index)
	}
	if item.DosagePerDay <= 0 {
		return fmt.Errorf("treatments[%d]: dosage_per_day must be a positive integer", index)
	}
	if item.DurationInDays <= 0 {
		return fmt.Errorf("treatments[%d]: duration_in_days must be a positive integer", index)
	}
	return nil
}

// AddTreatments godoc
// @Summary      Attach treatments to an appointment
// @Description  The owning doctor attaches one or more medication records; the whole list is saved atomically
// @Tags         Treatments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        appointment_id path int true "Appointment ID"
// @Param        request body AddTreatmentsRequest true "Treatment list"
// @Success      201 {object} util.APIResponse "Treatments added"
// @Failure      400 {object} util.APIResponse "Empty list or invalid treatment item"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Caller is not the appointment's doctor"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /add-treatments/{appointment_id}/ [post]
func AddTreatments(c *gin.Context) {
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
	if !requireAppointmentDoctor(c, appointment, "add treatments to") {
		return
	}

	var req AddTreatmentsRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if len(req.Treatments) == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "No treatments provided",
			Err: fmt.Errorf("treatments list is empty"),
		})
		return
	}

	// Validate every item before touching the database so a bad entry never
	// leaves earlier items half-committed.
	for i, item := range req.Treatments {
		if err := validateTreatmentItem(i, item); err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
			return
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Treatments {
			treatment := model.Treatment{
				AppointmentID:  appointment.ID,
				MedicationName: item.MedicationName,
				DosagePerDay:   item.DosagePerDay,
				DurationInDays: item.DurationInDays,
				Notes:          item.Notes,
			}
			if err := tx.Create(&treatment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to add treatments", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Treatments added successfully",
		Data: map[string]interface{}{"appointment_id": appointment.ID, "total_added": len(req.Treatments)},
	})
}

// ListPatientTreatments godoc
// @Summary      List own treatments
// @Description  Return a flattened list of all treatments across the caller's appointments as a patient
// @Tags         Treatments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Treatments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /treatments/ [get]
func ListPatientTreatments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patientID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	var entries []model.PatientTreatmentEntry
	err := db.Table("treatments").
		Joins("JOIN appointments ON appointments.id = treatments.appointment_id").
		Select("treatments.appointment_id, treatments.medication_name, treatments.dosage_per_day, treatments.duration_in_days, treatments.notes").
		Where("appointments.patient_id = ? AND treatments.deleted_at IS NULL", patientID).
		Order("treatments.id ASC").
		Scan(&entries).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve treatments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Treatments retrieved",
		Data: map[string]interface{}{"total": len(entries), "treatments": entries},
	})
}
