package models

import "time"

// User is an account holder. Expenses reference it through UserID.
type User struct {
	Base
	Username            string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password            string     `gorm:"not null" json:"-"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	Expenses            []Expense  `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
