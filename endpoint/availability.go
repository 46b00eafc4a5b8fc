package endpoint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/middleware"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
)

type CreateAvailabilityRequest struct {
	StartTime time.Time `json:"start_time" binding:"required" example:"2024-01-01T10:00:00Z"`
	EndTime   time.Time `json:"end_time" binding:"required" example:"2024-01-01T10:30:00Z"`
}

// CreateAvailability godoc
// @Summary      Declare an availability slot
// @Description  Doctors declare an open time window patients can book against
// @Tags         Availability
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateAvailabilityRequest true "Time window"
// @Success      201 {object} util.APIResponse{data=model.Availability} "Slot created"
// @Failure      400 {object} util.APIResponse "Invalid window or duplicate slot"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Caller is not a doctor"
// @Router       /availability/ [post]
func CreateAvailability(c *gin.Context) {
	var req CreateAvailabilityRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctorID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	if !req.EndTime.After(req.StartTime) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "end_time must be after start_time",
			Err: fmt.Errorf("invalid time window"),
		})
		return
	}

	slot := model.Availability{
		DoctorID:  doctorID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	}

	// Exact-duplicate windows are rejected up front so clients get a clear
	// message instead of a raw constraint violation.
	var count int64
	if err := db.Model(&model.Availability{}).
		Where("doctor_id = ? AND start_time = ? AND end_time = ?", slot.DoctorID, slot.StartTime, slot.EndTime).
		Count(&count).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check existing slots", Err: err})
		return
	}
	if count > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "An identical availability slot already exists",
			Err: fmt.Errorf("duplicate availability"),
		})
		return
	}

	if err := db.Create(&slot).Error; err != nil {
		// Concurrent duplicate inserts are serialized by the unique index.
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "An identical availability slot already exists",
				Err: err,
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create availability", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Availability created", Data: slot})
}

// ListAvailabilities godoc
// @Summary      List availability slots
// @Description  List a doctor's open windows; defaults to the caller's own when doctor_id is omitted
// @Tags         Availability
// @Produce      json
// @Security     BearerAuth
// @Param        doctor_id query int false "Doctor ID to list slots for"
// @Success      200 {object} util.APIResponse "Slots retrieved"
// @Failure      400 {object} util.APIResponse "Invalid doctor_id"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /availability/ [get]
func ListAvailabilities(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctorID uint
	if q := c.Query("doctor_id"); q != "" {
		v, err := strconv.ParseUint(q, 10, 32)
		if err != nil || v == 0 {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "doctor_id must be a positive integer",
				Err: fmt.Errorf("invalid doctor_id %q", q),
			})
			return
		}
		doctorID = uint(v)
	} else {
		callerID, ok := getUserIDOrRespond(c)
		if !ok {
			return
		}
		role, _ := middleware.GetUserRole(c)
		if role != model.RoleDoctor {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "doctor_id query parameter is required for non-doctor callers",
				Err: fmt.Errorf("missing doctor_id"),
			})
			return
		}
		doctorID = callerID
	}

	var slots []model.Availability
	if err := db.Where("doctor_id = ?", doctorID).Order("start_time ASC").Find(&slots).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve availabilities", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Availabilities retrieved",
		Data: map[string]interface{}{"doctor_id": doctorID, "availabilities": slots, "total": len(slots)},
	})
}
