package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
	"github.com/yourusername/freelancedesk/utils"
	"go.uber.org/zap"
)

var seedUserID uint

var seedCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Load demo clients, invoices, expenses and payments for a user",
	Long: `Populate a user's desk with a small, realistic data set so the dashboard
and the assistant have something to show. Users that already have clients
are left untouched.`,
	Example: `  STORE_BACKEND=sqlite freelancedesk seed-demo --user 1`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedUserID == 0 {
			return errors.New("--user must be a positive user id")
		}
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		svc := records.NewService(st, utils.NewStellarClient(""), records.WithLogger(log))
		seeded, err := seedDemo(cmd.Context(), svc, seedUserID, time.Now())
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Fprintf(cmd.OutOrStdout(), "user %d already has clients, nothing seeded\n", seedUserID)
			return nil
		}
		log.Info("Demo data seeded", zap.Uint("user_id", seedUserID))
		fmt.Fprintf(cmd.OutOrStdout(), "demo data seeded for user %d\n", seedUserID)
		return nil
	},
}

func init() {
	seedCmd.Flags().UintVar(&seedUserID, "user", 0, "User id that will own the demo records")
	rootCmd.AddCommand(seedCmd)
}

type demoInvoice struct {
	client  int
	title   string
	amount  models.Amount
	status  models.InvoiceStatus
	issued  int // months before now
	payment models.PaymentMethod
}

// seedDemo writes the demo set through the records service, dated relative to now.
// It reports false when the user already has clients.
func seedDemo(ctx context.Context, svc *records.Service, userID uint, now time.Time) (bool, error) {
	existing, err := svc.ListClients(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	clients := []models.Client{
		{CompanyName: "Northwind Studio", ContactPerson: "Ada Moreno", Email: "ada@northwind.test", PaymentTerms: "Net 15"},
		{CompanyName: "Blue Harbor Labs", ContactPerson: "Sam Okafor", Email: "billing@blueharbor.test"},
		{CompanyName: "Quillon Press", ContactPerson: "Lee Varga", Email: "lee@quillon.test"},
		{CompanyName: "Old Mill Bakery", Status: models.ClientInactive},
	}
	ids := make([]uint, len(clients))
	for i := range clients {
		created, err := svc.CreateClient(ctx, userID, &clients[i])
		if err != nil {
			return false, fmt.Errorf("seed client %q: %w", clients[i].CompanyName, err)
		}
		ids[i] = created.ID
	}

	invoices := []demoInvoice{
		{client: 0, title: "Brand refresh", amount: "2400.00", status: models.InvoicePaid, issued: 5, payment: models.MethodBankTransfer},
		{client: 1, title: "API integration", amount: "3150.00", status: models.InvoicePaid, issued: 4, payment: models.MethodCard},
		{client: 0, title: "Landing page", amount: "980.00", status: models.InvoicePaid, issued: 3, payment: models.MethodPayPal},
		{client: 2, title: "Editorial layout", amount: "1275.50", status: models.InvoicePaid, issued: 2, payment: models.MethodBankTransfer},
		{client: 1, title: "Maintenance retainer", amount: "600.00", status: models.InvoiceOverdue, issued: 2},
		{client: 3, title: "Menu design", amount: "320.00", status: models.InvoicePaid, issued: 1, payment: models.MethodCash},
		{client: 2, title: "Cover artwork", amount: "850.00", status: models.InvoiceSent, issued: 0},
		{client: 0, title: "Motion graphics", amount: "1900.00", status: models.InvoiceDraft, issued: 0},
	}
	for _, d := range invoices {
		issued := monthsAgo(now, d.issued)
		inv, err := svc.CreateInvoice(ctx, userID, &models.Invoice{
			ClientID:  ids[d.client],
			Title:     d.title,
			Amount:    d.amount,
			Status:    d.status,
			IssueDate: issued,
			DueDate:   models.DateOf(issued.AddDate(0, 0, 30)),
		})
		if err != nil {
			return false, fmt.Errorf("seed invoice %q: %w", d.title, err)
		}
		if d.payment == "" {
			continue
		}
		if _, err := svc.CreatePayment(ctx, userID, &models.Payment{
			InvoiceID:    inv.ID,
			Amount:       d.amount,
			Method:       d.payment,
			ReceivedDate: models.DateOf(issued.AddDate(0, 0, 12)),
			Reference:    inv.InvoiceNumber,
		}); err != nil {
			return false, fmt.Errorf("seed payment for %q: %w", d.title, err)
		}
	}

	expenses := []models.Expense{
		{Description: "Design software subscription", Amount: "54.99", Category: "Tools", Date: models.DateOf(now)},
		{Description: "Co-working day passes", Amount: "120.00", Category: "Office", Date: models.DateOf(now)},
		{Description: "Train to client workshop", Amount: "86.40", Category: "Transport", Date: monthsAgo(now, 1)},
		{Description: "Portfolio ads", Amount: "200.00", Category: "Marketing", Date: monthsAgo(now, 2)},
		{Description: "Quarterly tax advance", Amount: "1450.00", Category: "Tax", Date: monthsAgo(now, 3)},
	}
	for i := range expenses {
		if _, err := svc.CreateExpense(ctx, userID, &expenses[i]); err != nil {
			return false, fmt.Errorf("seed expense %q: %w", expenses[i].Description, err)
		}
	}
	return true, nil
}

// monthsAgo is now's day of month, n calendar months back, clamped to that month's length.
func monthsAgo(now time.Time, n int) models.Date {
	first := time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := now.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return models.NewDate(first.Year(), first.Month(), day)
}
