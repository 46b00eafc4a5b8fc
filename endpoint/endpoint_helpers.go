package endpoint

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/middleware"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func getUserIDOrRespond(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: fmt.Errorf("user id not found in context")})
		return 0, false
	}
	return userID, true
}

// parseIDParam parses the named path parameter into a uint and returns an error if invalid.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer", name)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return uint(id), nil
}

// fetchUserByID retrieves a user by ID, returning appropriate error responses for not found or DB errors.
func fetchUserByID(c *gin.Context, db *gorm.DB, userID uint) (*model.User, bool) {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return nil, false
	}
	return &user, true
}

// fetchAppointmentByID retrieves an appointment by ID. The not-found response
// is sent before any permission check so a missing appointment always yields 404.
func fetchAppointmentByID(c *gin.Context, db *gorm.DB, appointmentID uint) (*model.Appointment, bool) {
	var appointment model.Appointment
	if err := db.First(&appointment, appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return nil, false
	}
	return &appointment, true
}

// requireAppointmentDoctor checks that the caller owns the appointment as its
// doctor, responding 403 otherwise.
func requireAppointmentDoctor(c *gin.Context, appointment *model.Appointment, action string) bool {
	callerID, ok := getUserIDOrRespond(c)
	if !ok {
		return false
	}
	if appointment.DoctorID != callerID {
		email, _ := middleware.GetUserEmail(c)
		util.LogUnauthorizedAccess(fmt.Sprintf("%d", callerID), email, c.ClientIP(), c.Request.URL.Path, "caller is not the appointment's doctor")
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: fmt.Sprintf("You do not have permission to %s this appointment", action),
			Err: fmt.Errorf("caller is not the appointment's doctor"),
		})
		return false
	}
	return true
}

// emailExists checks whether an email already exists in users table excluding a given user ID.
func emailExists(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ? AND id != ?", email, excludeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
