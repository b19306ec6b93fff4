package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/records"
	"github.com/yourusername/freelancedesk/store"
	"github.com/yourusername/freelancedesk/utils"
	"go.uber.org/zap"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	st := store.NewMemory()
	svc := records.NewService(st, utils.NewStellarClient(""), records.WithClock(func() time.Time { return now }))

	seeded, err := seedDemo(ctx, svc, 7, now)
	require.NoError(t, err)
	assert.True(t, seeded)

	dash := dashboard.NewService(st, zap.NewNop())
	dash.SetClock(func() time.Time { return now })
	stats, err := dash.Stats(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.ActiveClients)
	assert.Equal(t, "8125.50", stats.TotalEarnings.StringFixed(2))
	assert.Equal(t, "1450.00", stats.PendingPayments.StringFixed(2))
	assert.Equal(t, "174.99", stats.MonthlyExpenses.StringFixed(2))
	assert.Empty(t, stats.Anomalies)
	require.NotEmpty(t, stats.TopClients)
	assert.Equal(t, "Northwind Studio", stats.TopClients[0].CompanyName)
	assert.Equal(t, "5280.00", stats.TopClients[0].TotalRevenue.StringFixed(2))

	payments, err := svc.ListPayments(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, payments, 5)

	t.Run("Second run is a no-op", func(t *testing.T) {
		seeded, err := seedDemo(ctx, svc, 7, now)
		require.NoError(t, err)
		assert.False(t, seeded)

		clients, err := svc.ListClients(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, clients, 4)
	})

	t.Run("Other users are unaffected", func(t *testing.T) {
		clients, err := svc.ListClients(ctx, 8)
		require.NoError(t, err)
		assert.Empty(t, clients)
	})
}

func TestMonthsAgo(t *testing.T) {
	tests := []struct {
		now  time.Time
		n    int
		want string
	}{
		{time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC), 0, "2024-06-15"},
		{time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC), 5, "2024-01-15"},
		{time.Date(2024, time.August, 31, 9, 0, 0, 0, time.UTC), 2, "2024-06-30"},
		{time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC), 1, "2024-02-29"},
		{time.Date(2023, time.March, 31, 9, 0, 0, 0, time.UTC), 1, "2023-02-28"},
		{time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC), 3, "2023-10-31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, monthsAgo(tt.now, tt.n).String(), "%s minus %d", tt.now.Format("2006-01-02"), tt.n)
	}
}

func TestSeedDemoAtMonthEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC)
	st := store.NewMemory()
	svc := records.NewService(st, utils.NewStellarClient(""), records.WithClock(func() time.Time { return now }))

	seeded, err := seedDemo(ctx, svc, 1, now)
	require.NoError(t, err)
	require.True(t, seeded)

	dash := dashboard.NewService(st, zap.NewNop())
	dash.SetClock(func() time.Time { return now })
	stats, err := dash.Stats(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "174.99", stats.MonthlyExpenses.StringFixed(2))
	require.Len(t, stats.MonthlyRevenue, 6)
	assert.Equal(t, "Feb", stats.MonthlyRevenue[4].Month)
	assert.Equal(t, "320.00", stats.MonthlyRevenue[4].Revenue.StringFixed(2))
	assert.Equal(t, "0.00", stats.MonthlyRevenue[5].Revenue.StringFixed(2))
	assert.Equal(t, "2400.00", stats.MonthlyRevenue[0].Revenue.StringFixed(2))
}
