package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"
	"fjacquet/expense-categorizer/internal/textutils"
)

// Recorder feeds confirmed saves back into the learning stores.
type Recorder struct {
	rules       store.RuleStore
	memory      store.MemoryStore
	placeholder string
	logger      logging.Logger
	metrics     *metrics.Metrics
}

// NewRecorder creates a Recorder. An empty placeholder defaults to
// models.CategoryUncategorized.
func NewRecorder(rules store.RuleStore, memory store.MemoryStore, placeholder string, logger logging.Logger) *Recorder {
	if placeholder == "" {
		placeholder = models.CategoryUncategorized
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Recorder{rules: rules, memory: memory, placeholder: placeholder, logger: logger}
}

// WithMetrics attaches m and returns r.
func (r *Recorder) WithMetrics(m *metrics.Metrics) *Recorder {
	r.metrics = m
	return r
}

// Record learns (userID, category, term of rawText). Placeholder and empty
// categories are ignored. The memory update and the rule upsert are attempted
// independently. Only a failed memory update is returned: the rule upsert is
// idempotent, so a caller may retry on error without counting a confirmation
// twice.
func (r *Recorder) Record(ctx context.Context, userID, category, rawText string) error {
	category = strings.TrimSpace(category)
	if category == "" || category == r.placeholder {
		r.metrics.ObserveConfirmation("skipped")
		return nil
	}
	if strings.TrimSpace(userID) == "" {
		r.metrics.ObserveConfirmation("failed")
		return apperror.Missing("userId")
	}

	term := textutils.ExtractTerm(rawText)
	log := r.logger.WithFields(
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCategory, Value: category},
		logging.Field{Key: logging.FieldTerm, Value: term},
	)

	var memErr error
	if r.memory != nil {
		if err := r.memory.Record(ctx, userID, category, term); err != nil {
			memErr = fmt.Errorf("record user memory: %w", err)
		}
	}
	if term != "" && r.rules != nil {
		if err := r.rules.PutRule(ctx, term, category); err != nil {
			log.WithError(err).Warn("Failed to store learned rule")
		}
	}

	if memErr != nil {
		r.metrics.ObserveConfirmation("failed")
		log.WithError(memErr).Warn("Failed to record confirmation")
		return memErr
	}
	r.metrics.ObserveConfirmation("recorded")
	log.Debug("Recorded confirmation")
	return nil
}

// Confirm records c. It lets a Recorder serve directly as the ledger's
// confirmation sink.
func (r *Recorder) Confirm(ctx context.Context, c models.Confirmation) error {
	return r.Record(ctx, c.UserID, c.Category, c.RawText)
}
