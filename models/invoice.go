package models

import (
	"strings"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// Outstanding reports whether the invoice has been sent but not collected.
func (s InvoiceStatus) Outstanding() bool {
	return s == InvoiceSent || s == InvoiceOverdue
}

type Invoice struct {
	Base
	ClientID      uint          `gorm:"index;not null" json:"client_id"`
	InvoiceNumber string        `gorm:"size:50;not null;index" json:"invoice_number"`
	Title         string        `gorm:"size:255;not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`
	Amount        Amount        `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string        `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status        InvoiceStatus `gorm:"size:20;default:'Draft'" json:"status"` // Draft, Sent, Paid, Overdue
	IssueDate     Date          `gorm:"not null" json:"issue_date"`
	DueDate       Date          `gorm:"not null" json:"due_date"`
	PaidDate      *Date         `json:"paid_date,omitempty"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

// Prepare trims input, fills defaults and validates the invoice. A Paid invoice without a
// paid date is stamped with today; any other status carries none.
func (i *Invoice) Prepare(today Date) error {
	i.InvoiceNumber = strings.TrimSpace(i.InvoiceNumber)
	i.Title = strings.TrimSpace(i.Title)
	i.Description = strings.TrimSpace(i.Description)
	if i.Status == "" {
		i.Status = InvoiceDraft
	}

	if i.ClientID == 0 {
		return invalid("client_id", "is required")
	}
	if i.Title == "" {
		return invalid("title", "is required")
	}
	if len(i.InvoiceNumber) > 50 {
		return invalid("invoice_number", "must be at most 50 characters")
	}
	amount, err := NormalizeAmount(i.Amount)
	if err != nil {
		return err
	}
	i.Amount = amount
	if i.Currency, err = normalizeCurrency(i.Currency); err != nil {
		return err
	}
	if !i.Status.Valid() {
		return invalid("status", "must be one of Draft, Sent, Paid, Overdue")
	}
	if i.IssueDate.IsZero() {
		return invalid("issue_date", "is required")
	}
	if i.DueDate.IsZero() {
		return invalid("due_date", "is required")
	}
	if i.DueDate.Before(i.IssueDate.Time) {
		return invalid("due_date", "must not be before issue_date")
	}
	if i.Status != InvoicePaid || (i.PaidDate != nil && i.PaidDate.IsZero()) {
		i.PaidDate = nil
	}
	if i.Status == InvoicePaid && i.PaidDate == nil {
		paid := today
		i.PaidDate = &paid
	}
	return nil
}

// InvoicePatch carries the fields of a partial invoice update.
type InvoicePatch struct {
	ClientID      *uint          `json:"client_id"`
	InvoiceNumber *string        `json:"invoice_number"`
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	Amount        *Amount        `json:"amount"`
	Currency      *string        `json:"currency"`
	Status        *InvoiceStatus `json:"status"`
	IssueDate     *Date          `json:"issue_date"`
	DueDate       *Date          `json:"due_date"`
	PaidDate      *Date          `json:"paid_date"`
}

func (p InvoicePatch) Apply(i *Invoice) {
	setIf(&i.ClientID, p.ClientID)
	setIf(&i.InvoiceNumber, p.InvoiceNumber)
	setIf(&i.Title, p.Title)
	setIf(&i.Description, p.Description)
	setIf(&i.Amount, p.Amount)
	setIf(&i.Currency, p.Currency)
	setIf(&i.Status, p.Status)
	setIf(&i.IssueDate, p.IssueDate)
	setIf(&i.DueDate, p.DueDate)
	if p.PaidDate != nil {
		paid := *p.PaidDate
		i.PaidDate = &paid
	}
}
