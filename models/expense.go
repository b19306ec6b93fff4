package models

import "strings"

// DefaultExpenseCategory is used for expenses submitted without a category.
const DefaultExpenseCategory = "Other"

type Expense struct {
	Base
	Description string `gorm:"size:255;not null" json:"description"`
	Amount      Amount `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency    string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Category    string `gorm:"size:100;index" json:"category"` // Tools, Transport, Marketing, Tax, Office, ...
	Date        Date   `gorm:"not null;index" json:"date"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
	Receipt     string `gorm:"size:500" json:"receipt,omitempty"`
}

// TableName overrides the table name
func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) Prepare() error {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Notes = strings.TrimSpace(e.Notes)
	e.Receipt = strings.TrimSpace(e.Receipt)
	if e.Category == "" {
		e.Category = DefaultExpenseCategory
	}

	if e.Description == "" {
		return invalid("description", "is required")
	}
	if len(e.Description) > 255 {
		return invalid("description", "must be at most 255 characters")
	}
	amount, err := NormalizeAmount(e.Amount)
	if err != nil {
		return err
	}
	e.Amount = amount
	if e.Currency, err = normalizeCurrency(e.Currency); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

type ExpensePatch struct {
	Description *string `json:"description"`
	Amount      *Amount `json:"amount"`
	Currency    *string `json:"currency"`
	Category    *string `json:"category"`
	Date        *Date   `json:"date"`
	Notes       *string `json:"notes"`
	Receipt     *string `json:"receipt"`
}

func (p ExpensePatch) Apply(e *Expense) {
	setIf(&e.Description, p.Description)
	setIf(&e.Amount, p.Amount)
	setIf(&e.Currency, p.Currency)
	setIf(&e.Category, p.Category)
	setIf(&e.Date, p.Date)
	setIf(&e.Notes, p.Notes)
	setIf(&e.Receipt, p.Receipt)
}
