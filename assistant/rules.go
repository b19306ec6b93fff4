package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/freelancedesk/models"
)

type Intent string

const (
	IntentTopClients Intent = "top_clients"
	IntentOverdue    Intent = "overdue"
	IntentRevenue    Intent = "revenue"
	IntentExpenses   Intent = "expenses"
	IntentProfit     Intent = "profit"
	IntentInvoices   Intent = "invoices"
	IntentHelp       Intent = "help"
	IntentUnknown    Intent = "unknown"
)

const defaultReply = "I can answer questions about your top clients, revenue, expenses, profit, " +
	"invoices and overdue payments. Try \"Who are my top clients?\" or \"How much did I spend this month?\""

type rule struct {
	intent   Intent
	keywords []string
	answer   func(Snapshot) string
}

// rules is evaluated top to bottom and the first match wins. Overdue sits above invoices so
// "overdue invoices" is answered as overdue.
var rules = []rule{
	{IntentTopClients, []string{"top client", "best client", "biggest client", "top customer"}, answerTopClients},
	{IntentOverdue, []string{"overdue", "late payment", "unpaid", "past due"}, answerOverdue},
	{IntentRevenue, []string{"revenue", "earning", "income", "how much did i make", "sales"}, answerRevenue},
	{IntentExpenses, []string{"expense", "spend", "spent", "cost"}, answerExpenses},
	{IntentProfit, []string{"profit", "margin"}, answerProfit},
	{IntentInvoices, []string{"invoice", "bill"}, answerInvoices},
	{IntentHelp, []string{"help", "what can you do"}, func(Snapshot) string { return defaultReply }},
}

// Match returns the intent of the first rule with a keyword contained in question.
func Match(question string) Intent {
	if r, ok := match(question); ok {
		return r.intent
	}
	return IntentUnknown
}

func match(question string) (rule, bool) {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r, true
			}
		}
	}
	return rule{}, false
}

// RuleBased answers from the snapshot alone and never fails.
type RuleBased struct{}

func (RuleBased) Respond(_ context.Context, req Request) (Reply, error) {
	r, ok := match(req.Question)
	if !ok {
		return Reply{Intent: IntentUnknown, Reply: defaultReply, Source: SourceRules}, nil
	}
	return Reply{Intent: r.intent, Reply: r.answer(req.Snapshot), Source: SourceRules}, nil
}

func usd(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func answerTopClients(s Snapshot) string {
	if len(s.Stats.TopClients) == 0 {
		return "You don't have any clients yet. Add one to start tracking revenue per client."
	}
	var b strings.Builder
	b.WriteString("Your top clients by billed revenue:\n")
	for i, c := range s.Stats.TopClients {
		fmt.Fprintf(&b, "%d. %s: %s across %d invoice(s)\n", i+1, c.CompanyName, usd(c.TotalRevenue.Decimal), c.ProjectCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

func answerOverdue(s Snapshot) string {
	var overdue []models.Invoice
	total := decimal.Zero
	for _, inv := range s.Invoices {
		if inv.Status != models.InvoiceOverdue {
			continue
		}
		overdue = append(overdue, inv)
		if d, err := inv.Amount.Decimal(); err == nil {
			total = total.Add(d)
		}
	}
	if len(overdue) == 0 {
		return "You have no overdue invoices. Everything is on track."
	}

	names := clientNames(s.Clients)
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d overdue invoice(s) totalling %s:\n", len(overdue), usd(total))
	for _, inv := range overdue {
		client := names[inv.ClientID]
		if client == "" {
			client = "unknown client"
		}
		fmt.Fprintf(&b, "- %s for %s, %s %s, due %s\n", inv.InvoiceNumber, client, inv.Amount, inv.Currency, inv.DueDate)
	}
	return strings.TrimRight(b.String(), "\n")
}

func answerRevenue(s Snapshot) string {
	current := decimal.Zero
	label := ""
	if n := len(s.Stats.MonthlyRevenue); n > 0 {
		current = s.Stats.MonthlyRevenue[n-1].Revenue.Decimal
		label = s.Stats.MonthlyRevenue[n-1].Month
	}
	return fmt.Sprintf("You've collected %s in total from paid invoices, %s of it in %s. Another %s is still pending.",
		usd(s.Stats.TotalEarnings.Decimal), usd(current), label, usd(s.Stats.PendingPayments.Decimal))
}

func answerExpenses(s Snapshot) string {
	reply := fmt.Sprintf("You've spent %s this month.", usd(s.Stats.MonthlyExpenses.Decimal))
	if category, amount, ok := topCategory(s.Expenses); ok {
		reply += fmt.Sprintf(" Your largest category overall is %s at %s.", category, usd(amount))
	}
	return reply
}

func answerProfit(s Snapshot) string {
	revenue := decimal.Zero
	if n := len(s.Stats.MonthlyRevenue); n > 0 {
		revenue = s.Stats.MonthlyRevenue[n-1].Revenue.Decimal
	}
	profit := revenue.Sub(s.Stats.MonthlyExpenses.Decimal)
	verdict := "a profit"
	if profit.IsNegative() {
		verdict = "a loss"
	}
	return fmt.Sprintf("This month you collected %s and spent %s, %s of %s.",
		usd(revenue), usd(s.Stats.MonthlyExpenses.Decimal), verdict, usd(profit.Abs()))
}

func answerInvoices(s Snapshot) string {
	if len(s.Invoices) == 0 {
		return "You haven't created any invoices yet."
	}
	counts := make(map[models.InvoiceStatus]int)
	for _, inv := range s.Invoices {
		counts[inv.Status]++
	}
	return fmt.Sprintf("You have %d invoice(s): %d draft, %d sent, %d paid, %d overdue.",
		len(s.Invoices), counts[models.InvoiceDraft], counts[models.InvoiceSent], counts[models.InvoicePaid], counts[models.InvoiceOverdue])
}

func clientNames(clients []models.Client) map[uint]string {
	names := make(map[uint]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.CompanyName
	}
	return names
}

func topCategory(expenses []models.Expense) (string, decimal.Decimal, bool) {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		d, err := e.Amount.Decimal()
		if err != nil {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(d)
	}
	if len(totals) == 0 {
		return "", decimal.Zero, false
	}
	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	best := categories[0]
	for _, c := range categories[1:] {
		if totals[c].GreaterThan(totals[best]) {
			best = c
		}
	}
	return best, totals[best], true
}

// summary renders the snapshot as compact context for an upstream model.
func summary(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total collected: %s\n", usd(s.Stats.TotalEarnings.Decimal))
	fmt.Fprintf(&b, "Pending: %s\n", usd(s.Stats.PendingPayments.Decimal))
	fmt.Fprintf(&b, "Expenses this month: %s\n", usd(s.Stats.MonthlyExpenses.Decimal))
	fmt.Fprintf(&b, "Active clients: %d\n", s.Stats.ActiveClients)
	b.WriteString("Monthly revenue:")
	for _, m := range s.Stats.MonthlyRevenue {
		fmt.Fprintf(&b, " %s %s;", m.Month, usd(m.Revenue.Decimal))
	}
	b.WriteString("\nTop clients:")
	for _, c := range s.Stats.TopClients {
		fmt.Fprintf(&b, " %s %s (%d invoices);", c.CompanyName, usd(c.TotalRevenue.Decimal), c.ProjectCount)
	}
	b.WriteString("\n")
	b.WriteString(answerInvoices(s))
	return b.String()
}
