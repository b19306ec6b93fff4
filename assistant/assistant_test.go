package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/store"
)

var now = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func TestMatch(t *testing.T) {
	cases := []struct {
		question string
		want     Intent
	}{
		{"Who are my TOP CLIENTS?", IntentTopClients},
		{"show me overdue invoices", IntentOverdue},
		{"Any late payments?", IntentOverdue},
		{"what's my revenue this year", IntentRevenue},
		{"Total earnings please", IntentRevenue},
		{"how much did I spend", IntentExpenses},
		{"list expenses", IntentExpenses},
		{"am I making a profit", IntentProfit},
		{"how many invoices do I have", IntentInvoices},
		{"help", IntentHelp},
		{"what can you do?", IntentHelp},
		{"tell me a joke", IntentUnknown},
		{"", IntentUnknown},
		// top clients outranks revenue when both appear
		{"revenue from my top clients", IntentTopClients},
		// revenue outranks profit
		{"revenue and profit", IntentRevenue},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.question))
		})
	}
}

func sampleSnapshot() Snapshot {
	acme := models.Client{Base: models.Base{ID: 1}, CompanyName: "Acme", Status: models.ClientActive}
	globex := models.Client{Base: models.Base{ID: 2}, CompanyName: "Globex", Status: models.ClientActive}
	snap := dashboard.Snapshot{
		Clients: []models.Client{acme, globex},
		Invoices: []models.Invoice{
			{Base: models.Base{ID: 1}, ClientID: 1, InvoiceNumber: "INV-1", Amount: "300.00", Status: models.InvoicePaid, IssueDate: models.NewDate(2024, 6, 2)},
			{Base: models.Base{ID: 2}, ClientID: 1, InvoiceNumber: "INV-2", Amount: "100.00", Status: models.InvoiceDraft, IssueDate: models.NewDate(2024, 6, 3)},
			{Base: models.Base{ID: 3}, ClientID: 2, InvoiceNumber: "INV-3", Amount: "75.50", Currency: "USD", Status: models.InvoiceOverdue,
				IssueDate: models.NewDate(2024, 4, 1), DueDate: models.NewDate(2024, 5, 1)},
		},
		Expenses: []models.Expense{
			{Base: models.Base{ID: 1}, Description: "Laptop", Amount: "52.99", Category: "Tools", Date: models.NewDate(2024, 6, 4)},
			{Base: models.Base{ID: 2}, Description: "Train", Amount: "25.50", Category: "Transport", Date: models.NewDate(2024, 5, 4)},
		},
	}
	return Snapshot{
		Stats:    dashboard.Compute(snap, now),
		Clients:  snap.Clients,
		Invoices: snap.Invoices,
		Expenses: snap.Expenses,
	}
}

func TestRuleBasedReplies(t *testing.T) {
	snap := sampleSnapshot()
	ask := func(q string) Reply {
		reply, err := RuleBased{}.Respond(context.Background(), Request{Question: q, Snapshot: snap})
		require.NoError(t, err)
		assert.Equal(t, SourceRules, reply.Source)
		return reply
	}

	t.Run("Top clients", func(t *testing.T) {
		reply := ask("top clients")
		assert.Equal(t, IntentTopClients, reply.Intent)
		assert.Contains(t, reply.Reply, "1. Acme: $400.00 across 2 invoice(s)")
		assert.Contains(t, reply.Reply, "2. Globex: $75.50")
	})

	t.Run("Overdue", func(t *testing.T) {
		reply := ask("overdue invoices")
		assert.Equal(t, IntentOverdue, reply.Intent)
		assert.Contains(t, reply.Reply, "1 overdue invoice(s) totalling $75.50")
		assert.Contains(t, reply.Reply, "INV-3 for Globex")
		assert.Contains(t, reply.Reply, "due 2024-05-01")
	})

	t.Run("Revenue", func(t *testing.T) {
		reply := ask("revenue")
		assert.Contains(t, reply.Reply, "$300.00 in total")
		assert.Contains(t, reply.Reply, "in Jun")
		assert.Contains(t, reply.Reply, "$75.50 is still pending")
	})

	t.Run("Expenses", func(t *testing.T) {
		reply := ask("expenses")
		assert.Contains(t, reply.Reply, "spent $52.99 this month")
		assert.Contains(t, reply.Reply, "largest category overall is Tools")
	})

	t.Run("Profit", func(t *testing.T) {
		reply := ask("profit")
		assert.Equal(t, "This month you collected $300.00 and spent $52.99, a profit of $247.01.", reply.Reply)
	})

	t.Run("Invoices", func(t *testing.T) {
		reply := ask("invoices")
		assert.Equal(t, "You have 3 invoice(s): 1 draft, 0 sent, 1 paid, 1 overdue.", reply.Reply)
	})

	t.Run("Fallback", func(t *testing.T) {
		reply := ask("what's the weather")
		assert.Equal(t, IntentUnknown, reply.Intent)
		assert.Equal(t, defaultReply, reply.Reply)
	})

	t.Run("Empty data", func(t *testing.T) {
		empty := Snapshot{Stats: dashboard.Compute(dashboard.Snapshot{}, now)}
		reply, err := RuleBased{}.Respond(context.Background(), Request{Question: "top clients", Snapshot: empty})
		require.NoError(t, err)
		assert.Contains(t, reply.Reply, "don't have any clients")

		reply, err = RuleBased{}.Respond(context.Background(), Request{Question: "overdue", Snapshot: empty})
		require.NoError(t, err)
		assert.Contains(t, reply.Reply, "no overdue invoices")
	})
}

func completionServer(t *testing.T, status int, content string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body.Messages, 2) {
			assert.Contains(t, body.Messages[1].Content, "Total collected: $300.00")
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1718000000,
			"model":   body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIResponder(t *testing.T) {
	req := Request{UserID: 1, Question: "How is my revenue trending?", Snapshot: sampleSnapshot()}

	t.Run("Success", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "  Revenue is up this month.  ", 0)
		o := NewOpenAI("test-key", "", srv.URL+"/v1", time.Second)

		reply, err := o.Respond(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceOpenAI, reply.Source)
		assert.Equal(t, IntentRevenue, reply.Intent)
		assert.Equal(t, "Revenue is up this month.", reply.Reply)
	})

	t.Run("Missing key", func(t *testing.T) {
		o := NewOpenAI("", "", "http://127.0.0.1:1/v1", time.Second)
		_, err := o.Respond(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Non 2xx", func(t *testing.T) {
		srv := completionServer(t, http.StatusInternalServerError, "", 0)
		o := NewOpenAI("test-key", "", srv.URL+"/v1", time.Second)
		_, err := o.Respond(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "too late", 2*time.Second)
		o := NewOpenAI("test-key", "", srv.URL+"/v1", 50*time.Millisecond)
		_, err := o.Respond(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Empty completion", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "   ", 0)
		o := NewOpenAI("test-key", "", srv.URL+"/v1", time.Second)
		_, err := o.Respond(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}

type mapCache struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	sets    int
	lastTTL time.Duration
}

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets++
	m.lastTTL = ttl
	return nil
}

type countingResponder struct {
	calls int
	reply Reply
	err   error
}

func (c *countingResponder) Respond(context.Context, Request) (Reply, error) {
	c.calls++
	return c.reply, c.err
}

func TestCached(t *testing.T) {
	req := Request{UserID: 1, Question: "How is my revenue?", Snapshot: sampleSnapshot()}

	t.Run("Second ask is served from cache", func(t *testing.T) {
		upstream := &countingResponder{reply: Reply{Intent: IntentRevenue, Reply: "fine", Source: SourceOpenAI}}
		cache := &mapCache{values: map[string]string{}}
		cached := NewCached(upstream, cache, time.Minute, nil)

		first, err := cached.Respond(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceOpenAI, first.Source)

		again := req
		again.Question = "  how is MY   revenue? "
		second, err := cached.Respond(context.Background(), again)
		require.NoError(t, err)
		assert.Equal(t, SourceCache, second.Source)
		assert.Equal(t, "fine", second.Reply)
		assert.Equal(t, IntentRevenue, second.Intent)
		assert.Equal(t, 1, upstream.calls)
		assert.Equal(t, time.Minute, cache.lastTTL)
	})

	t.Run("Keys are per user", func(t *testing.T) {
		other := req
		other.UserID = 2
		assert.NotEqual(t, cacheKey(req), cacheKey(other))
	})

	t.Run("Upstream errors are not cached", func(t *testing.T) {
		upstream := &countingResponder{err: ErrUpstream}
		cache := &mapCache{values: map[string]string{}}
		cached := NewCached(upstream, cache, time.Minute, nil)

		_, err := cached.Respond(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Equal(t, 0, cache.sets)
	})

	t.Run("Cache outage falls through", func(t *testing.T) {
		upstream := &countingResponder{reply: Reply{Intent: IntentRevenue, Reply: "fine", Source: SourceOpenAI}}
		cache := &mapCache{values: map[string]string{}, getErr: errors.New("connection refused")}
		cached := NewCached(upstream, cache, time.Minute, nil)

		reply, err := cached.Respond(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceOpenAI, reply.Source)
	})

	t.Run("Unreachable redis falls through", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
		t.Cleanup(func() { rdb.Close() })
		upstream := &countingResponder{reply: Reply{Intent: IntentRevenue, Reply: "fine", Source: SourceOpenAI}}
		cached := NewCached(upstream, NewRedisCache(rdb), time.Minute, nil)

		reply, err := cached.Respond(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "fine", reply.Reply)
	})
}

func TestServiceChat(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	c := &models.Client{CompanyName: "Acme", Status: models.ClientActive}
	c.UserID = 1
	require.NoError(t, st.Clients.Create(ctx, c))
	inv := &models.Invoice{ClientID: c.ID, InvoiceNumber: "INV-1", Title: "Site", Amount: "120.00", Status: models.InvoiceOverdue,
		IssueDate: models.NewDate(2024, 5, 1), DueDate: models.NewDate(2024, 5, 31)}
	inv.UserID = 1
	require.NoError(t, st.Invoices.Create(ctx, inv))

	dash := dashboard.NewService(st, nil)
	dash.SetClock(func() time.Time { return now })

	t.Run("Rules by default", func(t *testing.T) {
		svc := NewService(dash, nil, nil)
		reply, err := svc.Chat(ctx, 1, "Which invoices are overdue?", "")
		require.NoError(t, err)
		assert.Equal(t, IntentOverdue, reply.Intent)
		assert.Contains(t, reply.Reply, "INV-1 for Acme")
	})

	t.Run("Other users see their own data", func(t *testing.T) {
		svc := NewService(dash, nil, nil)
		reply, err := svc.Chat(ctx, 2, "overdue", "")
		require.NoError(t, err)
		assert.Contains(t, reply.Reply, "no overdue invoices")
	})

	t.Run("Empty message", func(t *testing.T) {
		svc := NewService(dash, nil, nil)
		_, err := svc.Chat(ctx, 1, "   ", "")
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("AI mode without upstream", func(t *testing.T) {
		svc := NewService(dash, nil, nil)
		_, err := svc.Chat(ctx, 1, "overdue", ModeAI)
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("AI mode failure is surfaced", func(t *testing.T) {
		upstream := &countingResponder{err: ErrUpstream}
		svc := NewService(dash, upstream, nil)
		_, err := svc.Chat(ctx, 1, "overdue", "AI")
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Equal(t, 1, upstream.calls)
	})

	t.Run("AI mode passes the snapshot", func(t *testing.T) {
		var seen Request
		upstream := responderFunc(func(_ context.Context, req Request) (Reply, error) {
			seen = req
			return Reply{Intent: Match(req.Question), Reply: "ok", Source: SourceOpenAI}, nil
		})
		svc := NewService(dash, upstream, nil)
		reply, err := svc.Chat(ctx, 1, "overdue?", ModeAI)
		require.NoError(t, err)
		assert.Equal(t, SourceOpenAI, reply.Source)
		assert.Equal(t, uint(1), seen.UserID)
		assert.Len(t, seen.Snapshot.Invoices, 1)
		assert.Equal(t, "120.00", seen.Snapshot.Stats.PendingPayments.StringFixed(2))
	})
}

type responderFunc func(ctx context.Context, req Request) (Reply, error)

func (f responderFunc) Respond(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}
