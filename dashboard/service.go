package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/freelancedesk/metrics"
	"github.com/yourusername/freelancedesk/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service loads a user's records and computes the dashboard on demand. Nothing is cached.
type Service struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log, now: time.Now}
}

// SetClock replaces the wall clock used to place the current month.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot reads clients, invoices and expenses concurrently. Any failed read fails the whole
// snapshot.
func (s *Service) Snapshot(ctx context.Context, userID uint) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients, err := s.store.Clients.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		snap.Clients = clients
		return nil
	})
	g.Go(func() error {
		invoices, err := s.store.Invoices.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		snap.Invoices = invoices
		return nil
	})
	g.Go(func() error {
		expenses, err := s.store.Expenses.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		snap.Expenses = expenses
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Stats returns the full dashboard for userID, or an error. It never returns partial stats.
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := s.Compute(snap, userID)
	return &stats, nil
}

// Compute runs the aggregation over an already loaded snapshot and reports anomalies.
func (s *Service) Compute(snap Snapshot, userID uint) Stats {
	stats := Compute(snap, s.now())
	metrics.DashboardComputations.Inc()
	s.report(userID, stats.Anomalies)
	return stats
}

func (s *Service) report(userID uint, anomalies []Anomaly) {
	for _, a := range anomalies {
		metrics.SkippedAmounts.WithLabelValues(a.Entity).Inc()
		s.log.Warn("skipping record with unparseable amount",
			zap.Uint("user_id", userID),
			zap.String("entity", a.Entity),
			zap.Uint("id", a.ID),
			zap.String("amount", string(a.Amount)),
			zap.Error(a.Err),
		)
	}
}

// ClientStats returns every client of userID with its billed totals.
func (s *Service) ClientStats(ctx context.Context, userID uint) ([]ClientWithStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	var snap Snapshot
	g.Go(func() error {
		var err error
		snap.Clients, err = s.store.Clients.List(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Invoices, err = s.store.Invoices.List(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load client stats: %w", err)
	}
	stats, anomalies := ClientStats(snap.Clients, snap.Invoices)
	s.report(userID, anomalies)
	return stats, nil
}
