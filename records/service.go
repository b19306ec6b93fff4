package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/freelancedesk/metrics"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/store"
	"github.com/yourusername/freelancedesk/utils"
	"go.uber.org/zap"
)

// ErrConflict is returned when a write would break a per-user uniqueness rule.
var ErrConflict = errors.New("conflict")

// Service is the validated, owner-scoped entry point for every record write.
type Service struct {
	store   *store.Store
	stellar utils.AccountValidator
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used for defaults such as paid and received dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(st *store.Store, stellar utils.AccountValidator, opts ...Option) *Service {
	s := &Service{
		store:   st,
		stellar: stellar,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now())
}

func (s *Service) written(entity, op string, id, userID uint) {
	metrics.RecordWrites.WithLabelValues(entity, op).Inc()
	s.log.Debug("record written",
		zap.String("entity", entity),
		zap.String("op", op),
		zap.Uint("id", id),
		zap.Uint("user_id", userID),
	)
}

// Clients

func (s *Service) CreateClient(ctx context.Context, userID uint, c *models.Client) (*models.Client, error) {
	c.UserID = userID
	if err := c.Prepare(); err != nil {
		return nil, err
	}
	if err := s.store.Clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.written("client", "create", c.ID, userID)
	return c, nil
}

func (s *Service) ListClients(ctx context.Context, userID uint) ([]models.Client, error) {
	return s.store.Clients.List(ctx, userID)
}

func (s *Service) GetClient(ctx context.Context, id, userID uint) (*models.Client, error) {
	return s.store.Clients.Get(ctx, id, userID)
}

func (s *Service) UpdateClient(ctx context.Context, id, userID uint, patch models.ClientPatch) (*models.Client, error) {
	updated, err := s.store.Clients.Update(ctx, id, userID, func(c *models.Client) error {
		patch.Apply(c)
		return c.Prepare()
	})
	if err != nil {
		return nil, err
	}
	s.written("client", "update", id, userID)
	return updated, nil
}

// DeleteClient removes the client only. Its invoices and payments are kept.
func (s *Service) DeleteClient(ctx context.Context, id, userID uint) (bool, error) {
	return s.deleted("client", id, userID)(s.store.Clients.Delete(ctx, id, userID))
}

// Invoices

func (s *Service) CreateInvoice(ctx context.Context, userID uint, inv *models.Invoice) (*models.Invoice, error) {
	inv.UserID = userID
	inv.ID = 0
	if err := s.checkInvoice(ctx, inv, true); err != nil {
		return nil, err
	}
	if err := s.store.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	s.written("invoice", "create", inv.ID, userID)
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, userID uint) ([]models.Invoice, error) {
	return s.store.Invoices.List(ctx, userID)
}

func (s *Service) GetInvoice(ctx context.Context, id, userID uint) (*models.Invoice, error) {
	return s.store.Invoices.Get(ctx, id, userID)
}

func (s *Service) UpdateInvoice(ctx context.Context, id, userID uint, patch models.InvoicePatch) (*models.Invoice, error) {
	merged, err := s.store.Invoices.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	previousClient := merged.ClientID
	patch.Apply(merged)
	if err := s.checkInvoice(ctx, merged, merged.ClientID != previousClient); err != nil {
		return nil, err
	}
	updated, err := s.store.Invoices.Update(ctx, id, userID, func(inv *models.Invoice) error {
		*inv = *merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.written("invoice", "update", id, userID)
	return updated, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id, userID uint) (bool, error) {
	return s.deleted("invoice", id, userID)(s.store.Invoices.Delete(ctx, id, userID))
}

// checkInvoice normalises inv and enforces number uniqueness. Client ownership is only
// checked when relinked, so invoices of a deleted client stay editable.
func (s *Service) checkInvoice(ctx context.Context, inv *models.Invoice, relinked bool) error {
	today := s.today()
	if err := inv.Prepare(today); err != nil {
		return err
	}
	if relinked {
		if err := s.ownsClient(ctx, inv.UserID, inv.ClientID); err != nil {
			return err
		}
	}

	existing, err := s.store.Invoices.List(ctx, inv.UserID)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = nextInvoiceNumber(existing, today)
		return nil
	}
	for _, other := range existing {
		if other.ID != inv.ID && strings.EqualFold(other.InvoiceNumber, inv.InvoiceNumber) {
			return fmt.Errorf("%w: invoice number %q is already used", ErrConflict, inv.InvoiceNumber)
		}
	}
	return nil
}

// nextInvoiceNumber returns the first free INV-<yyyymm>-<nnnn> number for the month.
func nextInvoiceNumber(existing []models.Invoice, today models.Date) string {
	taken := make(map[string]bool, len(existing))
	for _, inv := range existing {
		taken[strings.ToUpper(inv.InvoiceNumber)] = true
	}
	prefix := fmt.Sprintf("INV-%04d%02d-", today.Year(), int(today.Month()))
	for n := len(existing) + 1; ; n++ {
		candidate := fmt.Sprintf("%s%04d", prefix, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func (s *Service) ownsClient(ctx context.Context, userID, clientID uint) error {
	_, err := s.store.Clients.Get(ctx, clientID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.ValidationError{Field: "client_id", Reason: "does not reference one of your clients"}
	}
	return err
}

// Expenses

func (s *Service) CreateExpense(ctx context.Context, userID uint, e *models.Expense) (*models.Expense, error) {
	e.UserID = userID
	if err := e.Prepare(); err != nil {
		return nil, err
	}
	if err := s.store.Expenses.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.written("expense", "create", e.ID, userID)
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context, userID uint) ([]models.Expense, error) {
	return s.store.Expenses.List(ctx, userID)
}

func (s *Service) GetExpense(ctx context.Context, id, userID uint) (*models.Expense, error) {
	return s.store.Expenses.Get(ctx, id, userID)
}

func (s *Service) UpdateExpense(ctx context.Context, id, userID uint, patch models.ExpensePatch) (*models.Expense, error) {
	updated, err := s.store.Expenses.Update(ctx, id, userID, func(e *models.Expense) error {
		patch.Apply(e)
		return e.Prepare()
	})
	if err != nil {
		return nil, err
	}
	s.written("expense", "update", id, userID)
	return updated, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id, userID uint) (bool, error) {
	return s.deleted("expense", id, userID)(s.store.Expenses.Delete(ctx, id, userID))
}

// Payments

func (s *Service) CreatePayment(ctx context.Context, userID uint, p *models.Payment) (*models.Payment, error) {
	p.UserID = userID
	if err := s.checkPayment(ctx, p, true); err != nil {
		return nil, err
	}
	if err := s.store.Payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.written("payment", "create", p.ID, userID)
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, userID uint) ([]models.Payment, error) {
	return s.store.Payments.List(ctx, userID)
}

func (s *Service) GetPayment(ctx context.Context, id, userID uint) (*models.Payment, error) {
	return s.store.Payments.Get(ctx, id, userID)
}

func (s *Service) UpdatePayment(ctx context.Context, id, userID uint, patch models.PaymentPatch) (*models.Payment, error) {
	merged, err := s.store.Payments.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	previousInvoice, previousClient := merged.InvoiceID, merged.ClientID
	if patch.InvoiceID != nil && patch.ClientID == nil {
		// moving to another invoice re-derives the client from it
		merged.ClientID = 0
	}
	patch.Apply(merged)
	relinked := merged.InvoiceID != previousInvoice || merged.ClientID != previousClient
	if err := s.checkPayment(ctx, merged, relinked); err != nil {
		return nil, err
	}
	updated, err := s.store.Payments.Update(ctx, id, userID, func(p *models.Payment) error {
		*p = *merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.written("payment", "update", id, userID)
	return updated, nil
}

func (s *Service) DeletePayment(ctx context.Context, id, userID uint) (bool, error) {
	return s.deleted("payment", id, userID)(s.store.Payments.Delete(ctx, id, userID))
}

// checkPayment validates the Stellar account for Stellar payments and, when relinked, ties
// the payment to an owned invoice and its client.
func (s *Service) checkPayment(ctx context.Context, p *models.Payment, relinked bool) error {
	if err := p.Prepare(s.today()); err != nil {
		return err
	}
	if relinked {
		if err := s.linkInvoice(ctx, p); err != nil {
			return err
		}
	}
	return s.checkStellar(p)
}

func (s *Service) linkInvoice(ctx context.Context, p *models.Payment) error {
	inv, err := s.store.Invoices.Get(ctx, p.InvoiceID, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.ValidationError{Field: "invoice_id", Reason: "does not reference one of your invoices"}
	}
	if err != nil {
		return err
	}
	if p.ClientID == 0 {
		p.ClientID = inv.ClientID
	} else if p.ClientID != inv.ClientID {
		return &models.ValidationError{Field: "client_id", Reason: "does not match the invoice's client"}
	}
	return nil
}

func (s *Service) checkStellar(p *models.Payment) error {
	if p.Method != models.MethodStellar {
		p.StellarAccount = ""
		return nil
	}
	if s.stellar == nil {
		return nil
	}
	if err := s.stellar.ValidateAccount(p.StellarAccount); err != nil {
		s.log.Info("stellar account rejected", zap.String("account", p.StellarAccount), zap.Error(err))
		return &models.ValidationError{Field: "stellar_account", Reason: err.Error()}
	}
	return nil
}

func (s *Service) deleted(entity string, id, userID uint) func(bool, error) (bool, error) {
	return func(ok bool, err error) (bool, error) {
		if err != nil {
			return false, err
		}
		if ok {
			s.written(entity, "delete", id, userID)
		}
		return ok, nil
	}
}
