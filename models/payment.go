package models

import "strings"

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCard         PaymentMethod = "Card"
	MethodCash         PaymentMethod = "Cash"
	MethodPayPal       PaymentMethod = "PayPal"
	MethodStellar      PaymentMethod = "Stellar"
	MethodOther        PaymentMethod = "Other"
)

type PaymentStatus string

const (
	PaymentReceived PaymentStatus = "Received"
	PaymentPending  PaymentStatus = "Pending"
	PaymentFailed   PaymentStatus = "Failed"
)

type Payment struct {
	Base
	InvoiceID      uint          `gorm:"index;not null" json:"invoice_id"`
	ClientID       uint          `gorm:"index;not null" json:"client_id"`
	Amount         Amount        `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency       string        `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Method         PaymentMethod `gorm:"size:30;not null" json:"method"`
	Status         PaymentStatus `gorm:"size:20;default:'Received'" json:"status"` // Received, Pending, Failed
	ReceivedDate   Date          `json:"received_date"`
	StellarAccount string        `gorm:"size:56" json:"stellar_account,omitempty"`
	Reference      string        `gorm:"size:255" json:"reference,omitempty"`
}

// TableName overrides the table name
func (Payment) TableName() string {
	return "payments"
}

// Prepare validates the payment's own fields. Invoice ownership and the Stellar account
// are checked by the caller, which has access to the store and the network rules.
func (p *Payment) Prepare(today Date) error {
	p.StellarAccount = strings.TrimSpace(p.StellarAccount)
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Method == "" {
		p.Method = MethodBankTransfer
	}
	if p.Status == "" {
		p.Status = PaymentReceived
	}
	if p.ReceivedDate.IsZero() {
		p.ReceivedDate = today
	}

	if p.InvoiceID == 0 {
		return invalid("invoice_id", "is required")
	}
	amount, err := NormalizeAmount(p.Amount)
	if err != nil {
		return err
	}
	p.Amount = amount
	if p.Currency, err = normalizeCurrency(p.Currency); err != nil {
		return err
	}
	switch p.Method {
	case MethodBankTransfer, MethodCard, MethodCash, MethodPayPal, MethodStellar, MethodOther:
	default:
		return invalid("method", "is not a supported payment method")
	}
	switch p.Status {
	case PaymentReceived, PaymentPending, PaymentFailed:
	default:
		return invalid("status", "must be one of Received, Pending, Failed")
	}
	if p.Method == MethodStellar && p.StellarAccount == "" {
		return invalid("stellar_account", "is required for Stellar payments")
	}
	return nil
}

type PaymentPatch struct {
	InvoiceID      *uint          `json:"invoice_id"`
	ClientID       *uint          `json:"client_id"`
	Amount         *Amount        `json:"amount"`
	Currency       *string        `json:"currency"`
	Method         *PaymentMethod `json:"method"`
	Status         *PaymentStatus `json:"status"`
	ReceivedDate   *Date          `json:"received_date"`
	StellarAccount *string        `json:"stellar_account"`
	Reference      *string        `json:"reference"`
}

func (pp PaymentPatch) Apply(p *Payment) {
	setIf(&p.InvoiceID, pp.InvoiceID)
	setIf(&p.ClientID, pp.ClientID)
	setIf(&p.Amount, pp.Amount)
	setIf(&p.Currency, pp.Currency)
	setIf(&p.Method, pp.Method)
	setIf(&p.Status, pp.Status)
	setIf(&p.ReceivedDate, pp.ReceivedDate)
	setIf(&p.StellarAccount, pp.StellarAccount)
	setIf(&p.Reference, pp.Reference)
}
