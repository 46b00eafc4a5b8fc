package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Role values recorded on a user account.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User represents a registered account, either a patient or a doctor
// @Description User account information
type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"column:email;uniqueIndex;not null" example:"jane@example.com"`
	Password     string `json:"-" gorm:"column:password"`
	PasswordSalt string `json:"-" gorm:"column:password_salt"`
	PhoneNumber  string `json:"phone_number" gorm:"column:phone_number" example:"081234567890"`
	Address      string `json:"address" gorm:"column:address" example:"123 Main St"`
	Role         string `json:"role" gorm:"column:role;type:varchar(50);default:patient" example:"patient"`
	FirstName    string `json:"firstname" gorm:"column:firstname" example:"Jane"`
	LastName     string `json:"lastname" gorm:"column:lastname" example:"Doe"`
	Birthday     string `json:"birthday" gorm:"column:birthday" example:"1990-04-21"`
	IsStaff      bool   `json:"is_staff" gorm:"column:is_staff;default:false"`
	IsSuperuser  bool   `json:"is_superuser" gorm:"column:is_superuser;default:false"`
	IsActive     bool   `json:"is_active" gorm:"column:is_active;default:true"`

	// Account lockout bookkeeping, updated on failed logins.
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}

// IsDoctor reports whether the account has the doctor role.
func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// IsPatient reports whether the account has the patient role.
func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

// ValidRole reports whether the given role string is one of the accepted roles.
// An empty role is valid and defaults to patient at registration.
func ValidRole(role string) bool {
	return role == "" || role == RolePatient || role == RoleDoctor
}

func SeedSuperuser(db *gorm.DB, email, password, salt string) error {
	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	admin := User{
		Email:        email,
		Password:     password,
		PasswordSalt: salt,
		Role:         RoleDoctor,
		IsStaff:      true,
		IsSuperuser:  true,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed superuser %s: %w", email, err)
	}
	return nil
}
