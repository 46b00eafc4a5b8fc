package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/medibook/medibook/middleware"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

// Token lifetimes. Access tokens are short-lived; refresh tokens let clients
// obtain new access tokens without re-entering credentials.
const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

var errInvalidCredentials = errors.New("invalid credentials")

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password    string `json:"password" binding:"required" example:"password123"`
	PhoneNumber string `json:"phone_number" example:"081234567890"`
	Address     string `json:"address" example:"123 Main St"`
	Role        string `json:"role" example:"patient"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type TokenPairResponse struct {
	Access  string `json:"access" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Register godoc
// @Summary      Register a new account
// @Description  Create a patient or doctor account; the password is hashed before storage
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse "Account created"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /register/ [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !model.ValidRole(req.Role) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Role must be either patient or doctor",
			Err: fmt.Errorf("unknown role %q", req.Role),
		})
		return
	}

	email := util.NormalizeEmail(req.Email)
	if !ensureEmailAvailable(c, db, email) {
		return
	}

	hashedPassword, salt, ok := hashPasswordForSignup(c, req.Password)
	if !ok {
		return
	}

	role := req.Role
	if role == "" {
		role = model.RolePatient
	}

	newUser := model.User{
		Email:        email,
		Password:     hashedPassword,
		PasswordSalt: salt,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		Role:         role,
		IsActive:     true,
	}

	if err := db.Create(&newUser).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegisterSuccess,
		UserID:    fmt.Sprintf("%d", newUser.ID),
		Email:     newUser.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   "User registered successfully",
	})

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "User registered successfully",
		Data: map[string]interface{}{"user_id": newUser.ID, "role": newUser.Role},
	})
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password, returning access and refresh tokens
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=TokenPairResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login/ [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	email := util.NormalizeEmail(req.Email)

	user, err := loadUserByEmail(db, email)
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "user not found")
		respondInvalidCredentials(c)
		return
	}
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "database error")
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if locked, expiry := isAccountLocked(&user); locked {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "account locked")
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", expiry.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return
	}

	match, err := util.VerifyPassword(req.Password, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "password verification error")
		util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return
	}
	if !match {
		incrementFailedAttempts(db, &user, ci)
		util.LogLoginFailure(email, ci.IP, ci.Agent, "invalid password")
		respondInvalidCredentials(c)
		return
	}

	if err := resetFailedAttempts(db, &user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        ci.IP,
			Message:   fmt.Sprintf("Failed to reset failed attempts: %v", err),
		})
	}

	access, err := CreateAccessToken(&user)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "token generation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}
	refresh, err := CreateRefreshToken(&user)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "token generation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	// Mirror the session to Redis (best-effort)
	_ = util.MirrorSession(user.ID, user.Role, access, accessTokenTTL)

	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: TokenPairResponse{Access: access, Refresh: refresh},
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a valid refresh token for a new access token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} util.APIResponse{data=TokenPairResponse} "Token refreshed"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid or expired refresh token"
// @Router       /token/refresh/ [post]
func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	claims, err := middleware.ParseToken(req.Refresh)
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired refresh token", Err: err})
		return
	}
	if tokenType, _ := claims["type"].(string); tokenType != middleware.TokenTypeRefresh {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Invalid or expired refresh token",
			Err: fmt.Errorf("token is not a refresh token"),
		})
		return
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Invalid or expired refresh token",
			Err: fmt.Errorf("token missing user id"),
		})
		return
	}

	var user model.User
	if err := db.First(&user, uint(rawID)).Error; err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Invalid or expired refresh token",
			Err: fmt.Errorf("user no longer exists"),
		})
		return
	}

	access, err := CreateAccessToken(&user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	_ = util.MirrorSession(user.ID, user.Role, access, accessTokenTTL)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Token refreshed",
		Data: TokenPairResponse{Access: access, Refresh: req.Refresh},
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Drop the caller's mirrored session entries and log the event
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /logout/ [delete]
func Logout(c *gin.Context) {
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmail(c)

	if token, ok := middleware.GetAccessToken(c); ok {
		_ = util.RemoveSessionToken(userID, token)
	}

	util.LogLogout(userID, email, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}

// helper types and functions shared by the authentication flow
type clientInfo struct {
	IP    string
	Agent string
}

func respondInvalidCredentials(c *gin.Context) {
	// Deliberately identical for unknown email and wrong password.
	util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid credentials", Err: errInvalidCredentials})
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existingUser model.User
	err := db.First(&existingUser, "email = ?", email).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: fmt.Errorf("email already exists")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func hashPasswordForSignup(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashedPassword, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashedPassword, salt, true
}

func loadUserByEmail(db *gorm.DB, email string) (model.User, error) {
	var user model.User
	err := db.Model(&user).Where("email = ?", email).First(&user).Error
	return user, err
}

func isAccountLocked(user *model.User) (bool, time.Time) {
	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		return true, time.Unix(*user.LockedUntil, 0)
	}
	return false, time.Time{}
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= 5 {
		lockUntil := time.Now().Add(15 * time.Minute).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(user.ID, user.Email, ci.IP, "too many failed login attempts")
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Email, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

// CreateAccessToken issues a short-lived bearer token carrying the user's
// identity and role.
func CreateAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"type":    middleware.TokenTypeAccess,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

// CreateRefreshToken issues a long-lived token usable only at the refresh endpoint.
func CreateRefreshToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.NewString(),
		"type":    middleware.TokenTypeRefresh,
		"exp":     time.Now().Add(refreshTokenTTL).Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}
