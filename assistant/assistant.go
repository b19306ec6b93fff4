package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/metrics"
	"github.com/yourusername/freelancedesk/models"
	"go.uber.org/zap"
)

// ErrUpstream marks a failure of the external model: missing credentials, timeout or a bad
// response. It is never replaced with a locally made up answer.
var ErrUpstream = errors.New("assistant upstream unavailable")

const (
	SourceRules  = "rules"
	SourceOpenAI = "openai"
	SourceCache  = "cache"
)

// ModeAI routes a question to the upstream model instead of the rule table.
const ModeAI = "ai"

// Snapshot is the already fetched data a reply is built from.
type Snapshot struct {
	Stats    dashboard.Stats
	Clients  []models.Client
	Invoices []models.Invoice
	Expenses []models.Expense
}

type Request struct {
	UserID   uint
	Question string
	Snapshot Snapshot
}

type Reply struct {
	Intent Intent `json:"intent"`
	Reply  string `json:"reply"`
	Source string `json:"source"`
}

type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
}

// Service loads the asking user's data and routes the question.
type Service struct {
	dashboard *dashboard.Service
	rules     Responder
	upstream  Responder
	log       *zap.Logger
}

// NewService wires the rule table and, when upstream is non-nil, the AI mode.
func NewService(dash *dashboard.Service, upstream Responder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{dashboard: dash, rules: RuleBased{}, upstream: upstream, log: log}
}

func (s *Service) Chat(ctx context.Context, userID uint, message, mode string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, &models.ValidationError{Field: "message", Reason: "is required"}
	}

	snap, err := s.dashboard.Snapshot(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	req := Request{
		UserID:   userID,
		Question: message,
		Snapshot: Snapshot{
			Stats:    s.dashboard.Compute(snap, userID),
			Clients:  snap.Clients,
			Invoices: snap.Invoices,
			Expenses: snap.Expenses,
		},
	}

	responder := s.rules
	if strings.EqualFold(mode, ModeAI) {
		if s.upstream == nil {
			return Reply{}, fmt.Errorf("%w: AI mode is not configured", ErrUpstream)
		}
		responder = s.upstream
	}

	reply, err := responder.Respond(ctx, req)
	if err != nil {
		s.log.Warn("assistant reply failed", zap.Uint("user_id", userID), zap.Error(err))
		return Reply{}, err
	}
	metrics.AssistantReplies.WithLabelValues(string(reply.Intent), reply.Source).Inc()
	return reply, nil
}
