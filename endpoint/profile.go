package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

var errEmailAlreadyExists = errors.New("email already exists")

// PatientProfileResponse is the reduced profile view returned to patients.
type PatientProfileResponse struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Birthday    string `json:"birthday"`
}

type UpdatePatientProfileRequest struct {
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Birthday    string `json:"birthday" example:"1990-04-21"`
}

// UpdateDoctorProfileRequest allows the full account serializer's mutable
// fields, including email and password.
type UpdateDoctorProfileRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Birthday    string `json:"birthday"`
}

func toPatientProfile(user *model.User) PatientProfileResponse {
	return PatientProfileResponse{
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Address:     user.Address,
		Role:        user.Role,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Birthday:    user.Birthday,
	}
}

// GetPatientProfile godoc
// @Summary      Get own profile
// @Description  Return the authenticated caller's profile fields
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=PatientProfileResponse} "Profile retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /profile/ [get]
func GetPatientProfile(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: toPatientProfile(user)})
}

// UpdatePatientProfile godoc
// @Summary      Update own profile
// @Description  Partially update the authenticated caller's profile fields
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdatePatientProfileRequest true "Profile fields"
// @Success      200 {object} util.APIResponse{data=PatientProfileResponse} "Profile updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /profile/ [put]
func UpdatePatientProfile(c *gin.Context) {
	var req UpdatePatientProfileRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	if req.Birthday != "" {
		if _, err := time.Parse("2006-01-02", req.Birthday); err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Birthday must be in YYYY-MM-DD format", Err: err})
			return
		}
		user.Birthday = req.Birthday
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if err := db.Save(user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile updated", Data: toPatientProfile(user)})
}

// GetDoctorProfile godoc
// @Summary      Get own account (full serializer)
// @Description  Return the authenticated caller's full account record; the password is never serialized
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=model.User} "Account retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Router       /doctor/profile/ [get]
func GetDoctorProfile(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Account retrieved", Data: user})
}

// UpdateDoctorProfile godoc
// @Summary      Update own account (full serializer)
// @Description  Partially update the caller's account, including email and password
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateDoctorProfileRequest true "Account fields"
// @Success      200 {object} util.APIResponse{data=model.User} "Account updated"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /doctor/profile/ [put]
func UpdateDoctorProfile(c *gin.Context) {
	var req UpdateDoctorProfileRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, ok := fetchUserByID(c, db, userID)
	if !ok {
		return
	}

	if err := applyDoctorProfileUpdate(db, user, &req); err != nil {
		if errors.Is(err, errEmailAlreadyExists) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: err})
			return
		}
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	if err := db.Save(user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update account", Err: err})
		return
	}

	if req.Password != "" {
		util.LogPasswordChanged(user.ID, user.Email, c.ClientIP())
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Account updated", Data: user})
}

// applyDoctorProfileUpdate mutates the user from the request, validating email
// uniqueness and re-hashing a changed password. Role changes are accepted as
// in the original API surface.
func applyDoctorProfileUpdate(db *gorm.DB, user *model.User, req *UpdateDoctorProfileRequest) error {
	if req.Email != "" {
		email := util.NormalizeEmail(req.Email)
		if email != user.Email {
			exists, err := emailExists(db, email, user.ID)
			if err != nil {
				return fmt.Errorf("failed to validate email uniqueness: %w", err)
			}
			if exists {
				return errEmailAlreadyExists
			}
			user.Email = email
		}
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return fmt.Errorf("role must be either patient or doctor")
		}
		user.Role = req.Role
	}

	if req.Birthday != "" {
		if _, err := time.Parse("2006-01-02", req.Birthday); err != nil {
			return fmt.Errorf("birthday must be in YYYY-MM-DD format")
		}
		user.Birthday = req.Birthday
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if req.Password != "" {
		salt, err := util.GenerateSalt()
		if err != nil {
			return fmt.Errorf("failed to generate password salt: %w", err)
		}
		hashed, err := util.HashPasswordArgon2(req.Password, salt)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
		user.PasswordSalt = salt
		// Changing the password drops any mirrored sessions.
		_ = util.InvalidateUserSessions(user.ID)
	}

	return nil
}
