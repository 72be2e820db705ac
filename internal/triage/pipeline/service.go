package pipeline

import (
	"context"
	"fmt"
	"time"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/common/logger"
	"lead-triage/internal/common/metrics"
	"lead-triage/internal/common/observability"
	"lead-triage/internal/models"
	"lead-triage/internal/triage/actions"
	"lead-triage/internal/triage/composer"
	"lead-triage/internal/triage/corpus"
	"lead-triage/internal/triage/extractor"
	"lead-triage/internal/triage/ledger"
	"lead-triage/internal/triage/planner"
	"lead-triage/internal/triage/ranker"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultTopK        = 3
	DefaultAuditWindow = 20

	OperationCreate  = "create_suggestion"
	OperationApprove = "approve_suggestion"
)

type Options struct {
	Corpus        *corpus.Corpus
	Ledger        *ledger.Ledger
	Executor      *actions.Executor
	Logger        logger.Logger
	Observability *observability.Observability
	TopK          int
	AuditWindow   int

	// NewID generates suggestion ids; NewLeadID fills in missing lead ids.
	NewID     func() string
	NewLeadID extractor.IDFunc
	Clock     func() time.Time
}

// Service runs the two pipeline entry points against one corpus and one
// ledger. It holds no mutable state of its own.
type Service struct {
	deals       []models.DealRecord
	ledger      *ledger.Ledger
	executor    *actions.Executor
	extractor   *extractor.Extractor
	logger      logger.Logger
	obs         *observability.Observability
	topK        int
	auditWindow int
	newID       func() string
	now         func() time.Time
}

func NewService(opts Options) (*Service, error) {
	if opts.Corpus == nil {
		return nil, fmt.Errorf("pipeline: corpus is required")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("pipeline: ledger is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Executor == nil {
		opts.Executor = actions.NewExecutor(opts.Clock)
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.AuditWindow <= 0 {
		opts.AuditWindow = DefaultAuditWindow
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}

	return &Service{
		deals:       opts.Corpus.Deals(),
		ledger:      opts.Ledger,
		executor:    opts.Executor,
		extractor:   extractor.New(opts.NewLeadID),
		logger:      opts.Logger.WithFields(map[string]interface{}{"component": "pipeline"}),
		obs:         opts.Observability,
		topK:        opts.TopK,
		auditWindow: opts.AuditWindow,
		newID:       opts.NewID,
		now:         opts.Clock,
	}, nil
}

// CreateSuggestion turns a lead into a recorded suggestion. Once started it
// always completes; the only error is a context that was already done.
func (s *Service) CreateSuggestion(ctx context.Context, lead models.RawLead) (*models.CreateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.obs.StartSpan(ctx, "pipeline."+OperationCreate)
	defer span.End()

	var leadCtx models.Context
	s.stage(ctx, "extract", func() {
		leadCtx = s.extractor.Extract(lead)
	})

	var similar []models.SimilarCase
	s.stage(ctx, "rank", func() {
		similar = ranker.Rank(leadCtx.Summary, s.deals, s.topK)
	})

	var plan models.Plan
	s.stage(ctx, "plan", func() {
		plan = planner.Plan(leadCtx, similar)
	})

	var draft models.Draft
	s.stage(ctx, "compose", func() {
		draft = composer.Compose(leadCtx, plan)
	})

	suggestion := &models.Suggestion{
		ID:        s.newID(),
		Context:   leadCtx,
		Similar:   similar,
		Plan:      plan,
		Draft:     draft,
		CreatedAt: models.FormatTimestamp(s.now()),
	}

	var analytics models.AnalyticsState
	s.stage(ctx, "record", func() {
		analytics = s.ledger.RecordCreation(ctx, suggestion)
	})

	span.SetAttributes(
		attribute.String("suggestion.id", suggestion.ID),
		attribute.String("lead.id", leadCtx.LeadID),
		attribute.String("lead.priority", string(leadCtx.Priority)),
	)
	metrics.SuggestionsCreated.WithLabelValues(string(leadCtx.Priority)).Inc()
	s.obs.RecordEvent(ctx, "created", string(leadCtx.Priority))

	s.logger.Info("suggestion created", map[string]interface{}{
		"suggestionId": suggestion.ID,
		"leadId":       leadCtx.LeadID,
		"priority":     string(leadCtx.Priority),
		"similar":      ranker.DealIDs(similar),
	})

	return &models.CreateResult{Suggestion: suggestion, Analytics: analytics}, nil
}

// ApproveSuggestion runs the downstream stubs for an approved suggestion and
// records the outcome. Malformed requests are rejected before the ledger is
// touched. An empty edited body falls back to the draft body.
func (s *Service) ApproveSuggestion(ctx context.Context, req models.ApprovalRequest) (*models.ApproveResult, error) {
	if err := ValidateApproval(req); err != nil {
		s.recordFailure(OperationApprove, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.obs.StartSpan(ctx, "pipeline."+OperationApprove,
		attribute.String("suggestion.id", req.Suggestion.ID),
		attribute.String("lead.id", req.Suggestion.Context.LeadID),
	)
	defer span.End()

	body := req.EditedBody
	if body == "" {
		body = req.Suggestion.Draft.Body
	}

	var results models.ActionResults
	s.stage(ctx, "execute", func() {
		results = s.executor.Execute(req.Suggestion, body)
	})

	var (
		entry     models.AuditEntry
		analytics models.AnalyticsState
	)
	s.stage(ctx, "record", func() {
		entry, analytics = s.ledger.RecordApproval(ctx, ledger.Approval{
			SuggestionID: req.Suggestion.ID,
			Results:      results,
			EditedBody:   body,
		})
	})

	metrics.SuggestionsApproved.Inc()
	s.obs.RecordEvent(ctx, "approved", string(req.Suggestion.Context.Priority))

	s.logger.Info("suggestion approved", map[string]interface{}{
		"suggestionId": req.Suggestion.ID,
		"leadId":       req.Suggestion.Context.LeadID,
		"edited":       req.EditedBody != "",
	})

	return &models.ApproveResult{Status: models.StatusOK, Audit: entry, Analytics: analytics}, nil
}

func (s *Service) Analytics() models.AnalyticsState {
	return s.ledger.Analytics()
}

// RecentAudit returns the configured audit window, oldest first.
func (s *Service) RecentAudit() models.AuditWindow {
	return models.AuditWindow{Audit: s.ledger.RecentAudit(s.auditWindow)}
}

// CorpusSize is the number of deals suggestions are ranked against.
func (s *Service) CorpusSize() int {
	return len(s.deals)
}

func (s *Service) stage(ctx context.Context, name string, fn func()) {
	_, span := s.obs.StartSpan(ctx, "stage."+name)
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	span.End()

	metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	s.obs.RecordStage(ctx, name, elapsed)
}

func (s *Service) recordFailure(operation string, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.RequestsFailed.WithLabelValues(operation, string(stdErr.Code)).Inc()
	s.logger.Warn("pipeline request rejected", map[string]interface{}{
		"operation": operation,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
}

// RecordFailure counts a request that failed before reaching the service,
// such as one whose body could not be decoded.
func (s *Service) RecordFailure(operation string, err error) {
	s.recordFailure(operation, err)
}
