package models

import (
	"time"

	"spendwise/internal/money"
)

// DateLayout is the calendar-date format used on the wire and in CSV imports.
const DateLayout = "2006-01-02"

// Expense is a single spending record owned by a user.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	Date        time.Time `gorm:"type:date;not null;index:idx_expenses_user_date,priority:2" json:"date"`
	Category    string    `gorm:"size:64;not null" json:"category"`
	AmountCents int64     `gorm:"type:bigint;not null" json:"amount_cents"`
	Description string    `gorm:"size:255;not null" json:"description"`
}

// Amount returns the expense amount as Money.
func (e *Expense) Amount() money.Money {
	return money.FromCents(e.AmountCents)
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
