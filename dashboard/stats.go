package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/freelancedesk/models"
)

const (
	// RevenueMonths is the length of the monthly revenue trend, current month included.
	RevenueMonths = 6
	// TopClientLimit caps the top client ranking.
	TopClientLimit = 5
)

// Figure is a money total. It renders as a JSON number with two decimals.
type Figure struct {
	decimal.Decimal
}

func (f Figure) MarshalJSON() ([]byte, error) {
	return []byte(f.StringFixed(2)), nil
}

type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue Figure `json:"revenue"`
}

// ClientWithStats is a read-only projection of a client and its invoices. It is never stored.
type ClientWithStats struct {
	models.Client
	TotalRevenue    Figure       `json:"total_revenue"`
	ProjectCount    int          `json:"project_count"`
	LastInvoiceDate *models.Date `json:"last_invoice_date,omitempty"`
}

// Anomaly is a stored record whose amount could not be parsed.
type Anomaly struct {
	Entity string
	ID     uint
	Amount models.Amount
	Err    error
}

type Stats struct {
	TotalEarnings   Figure            `json:"total_earnings"`
	PendingPayments Figure            `json:"pending_payments"`
	MonthlyExpenses Figure            `json:"monthly_expenses"`
	ActiveClients   int               `json:"active_clients"`
	MonthlyRevenue  []MonthRevenue    `json:"monthly_revenue"`
	TopClients      []ClientWithStats `json:"top_clients"`

	Anomalies []Anomaly `json:"-"`
}

// Snapshot is everything one user owns that the dashboard reads.
type Snapshot struct {
	Clients  []models.Client
	Invoices []models.Invoice
	Expenses []models.Expense
}

type pricedInvoice struct {
	*models.Invoice
	amount decimal.Decimal
}

// Compute derives the dashboard for one user's snapshot as of now. Records with an
// unparseable amount contribute nothing and are listed in Stats.Anomalies.
func Compute(snap Snapshot, now time.Time) Stats {
	invoices, anomalies := priceInvoices(snap.Invoices)

	var stats Stats
	for _, inv := range invoices {
		switch {
		case inv.Status == models.InvoicePaid:
			stats.TotalEarnings.Decimal = stats.TotalEarnings.Add(inv.amount)
		case inv.Status.Outstanding():
			stats.PendingPayments.Decimal = stats.PendingPayments.Add(inv.amount)
		}
	}

	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		if !e.Date.InMonth(now.Year(), now.Month()) {
			continue
		}
		amount, err := e.Amount.Decimal()
		if err != nil {
			anomalies = append(anomalies, Anomaly{Entity: "expense", ID: e.ID, Amount: e.Amount, Err: err})
			continue
		}
		stats.MonthlyExpenses.Decimal = stats.MonthlyExpenses.Add(amount)
	}

	for _, c := range snap.Clients {
		if c.Status == models.ClientActive {
			stats.ActiveClients++
		}
	}

	stats.MonthlyRevenue = monthlyRevenue(invoices, now)
	stats.TopClients = topClients(clientStats(snap.Clients, invoices), TopClientLimit)
	stats.Anomalies = anomalies
	return stats
}

// ClientStats computes billed totals per client, in the order clients are listed.
// Invoices whose client is not listed are ignored; those with an unparseable amount are
// skipped and returned as anomalies.
func ClientStats(clients []models.Client, invoices []models.Invoice) ([]ClientWithStats, []Anomaly) {
	priced, anomalies := priceInvoices(invoices)
	return clientStats(clients, priced), anomalies
}

func priceInvoices(invoices []models.Invoice) ([]pricedInvoice, []Anomaly) {
	priced := make([]pricedInvoice, 0, len(invoices))
	var anomalies []Anomaly
	for i := range invoices {
		inv := &invoices[i]
		amount, err := inv.Amount.Decimal()
		if err != nil {
			anomalies = append(anomalies, Anomaly{Entity: "invoice", ID: inv.ID, Amount: inv.Amount, Err: err})
			continue
		}
		priced = append(priced, pricedInvoice{Invoice: inv, amount: amount})
	}
	return priced, anomalies
}

func clientStats(clients []models.Client, invoices []pricedInvoice) []ClientWithStats {
	out := make([]ClientWithStats, len(clients))
	index := make(map[uint]int, len(clients))
	for i, c := range clients {
		out[i] = ClientWithStats{Client: c, TotalRevenue: Figure{decimal.Zero}}
		index[c.ID] = i
	}

	for _, inv := range invoices {
		i, ok := index[inv.ClientID]
		if !ok {
			continue
		}
		cs := &out[i]
		cs.TotalRevenue.Decimal = cs.TotalRevenue.Add(inv.amount)
		cs.ProjectCount++
		if inv.IssueDate.IsZero() {
			continue
		}
		if cs.LastInvoiceDate == nil || inv.IssueDate.After(cs.LastInvoiceDate.Time) {
			last := inv.IssueDate
			cs.LastInvoiceDate = &last
		}
	}
	return out
}

// topClients orders by billed revenue, highest first. Ties keep listing order.
func topClients(all []ClientWithStats, limit int) []ClientWithStats {
	ranked := make([]ClientWithStats, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalRevenue.GreaterThan(ranked[j].TotalRevenue.Decimal)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// monthlyRevenue sums Paid invoices by issue month over the trailing window ending at now.
func monthlyRevenue(invoices []pricedInvoice, now time.Time) []MonthRevenue {
	out := make([]MonthRevenue, 0, RevenueMonths)
	for back := RevenueMonths - 1; back >= 0; back-- {
		month := time.Date(now.Year(), now.Month()-time.Month(back), 1, 0, 0, 0, 0, now.Location())
		total := decimal.Zero
		for _, inv := range invoices {
			if inv.Status == models.InvoicePaid && inv.IssueDate.InMonth(month.Year(), month.Month()) {
				total = total.Add(inv.amount)
			}
		}
		out = append(out, MonthRevenue{Month: month.Format("Jan"), Revenue: Figure{total}})
	}
	return out
}
