package models

import (
	"net/mail"
	"strings"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "Active"
	ClientInactive ClientStatus = "Inactive"
)

// DefaultPaymentTerms is used when a client is created without terms.
const DefaultPaymentTerms = "Net 30"

type Client struct {
	Base
	CompanyName   string       `gorm:"size:255;not null" json:"company_name"`
	ContactPerson string       `gorm:"size:255" json:"contact_person,omitempty"`
	Email         string       `gorm:"size:255" json:"email,omitempty"`
	Phone         string       `gorm:"size:50" json:"phone,omitempty"`
	Address       string       `gorm:"type:text" json:"address,omitempty"`
	Status        ClientStatus `gorm:"size:20;default:'Active'" json:"status"`
	PaymentTerms  string       `gorm:"size:100" json:"payment_terms"`
}

// TableName overrides the table name
func (Client) TableName() string {
	return "clients"
}

// Prepare trims input, fills defaults and validates the client.
func (c *Client) Prepare() error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.PaymentTerms = strings.TrimSpace(c.PaymentTerms)
	if c.Status == "" {
		c.Status = ClientActive
	}
	if c.PaymentTerms == "" {
		c.PaymentTerms = DefaultPaymentTerms
	}

	if c.CompanyName == "" {
		return invalid("company_name", "is required")
	}
	if len(c.CompanyName) > 255 {
		return invalid("company_name", "must be at most 255 characters")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return invalid("email", "is not a valid address")
		}
	}
	switch c.Status {
	case ClientActive, ClientInactive:
	default:
		return invalid("status", "must be Active or Inactive")
	}
	return nil
}

// ClientPatch carries the fields of a partial client update; nil fields are left untouched.
type ClientPatch struct {
	CompanyName   *string       `json:"company_name"`
	ContactPerson *string       `json:"contact_person"`
	Email         *string       `json:"email"`
	Phone         *string       `json:"phone"`
	Address       *string       `json:"address"`
	Status        *ClientStatus `json:"status"`
	PaymentTerms  *string       `json:"payment_terms"`
}

func (p ClientPatch) Apply(c *Client) {
	setIf(&c.CompanyName, p.CompanyName)
	setIf(&c.ContactPerson, p.ContactPerson)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Address, p.Address)
	setIf(&c.Status, p.Status)
	setIf(&c.PaymentTerms, p.PaymentTerms)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
