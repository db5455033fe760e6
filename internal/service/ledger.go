package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/sirupsen/logrus"
)

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store store.Store) *LedgerService {
	return &LedgerService{
		store: store,
	}
}

// LedgerService is the audit log of amendment-application attempts. It only
// records outcomes; deciding them (including conflicts) is the orchestrator's
// job.
type LedgerService struct {
	store store.Store
}

// RecordPendingInput describes a freshly discovered amendment.
type RecordPendingInput struct {
	AmendmentRef  string
	CodeID        string
	Affected      []string
	Added         []string
	Modified      []string
	Repealed      []string
	Kind          model.AmendmentKind
	EffectiveDate time.Time
}

// RecordPending inserts a ledger row in status pending. ErrDuplicateAmendment
// when the (amendment ref, code) pair was already recorded; the caller should
// look up the existing row and possibly retry it instead.
func (s *LedgerService) RecordPending(ctx context.Context, input RecordPendingInput) (*model.AmendmentApplication, error) {
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, input.Kind)
	}

	if _, err := s.store.GetCode(ctx, input.CodeID); err != nil {
		return nil, err
	}

	app := &model.AmendmentApplication{
		ID:            uuid.New().String(),
		AmendmentRef:  input.AmendmentRef,
		CodeID:        input.CodeID,
		Kind:          input.Kind,
		EffectiveDate: input.EffectiveDate,
		Status:        model.StatusPending,
	}

	var err error
	if app.Affected, err = model.EncodeArticleList(input.Affected); err != nil {
		return nil, err
	}
	if app.Added, err = model.EncodeArticleList(input.Added); err != nil {
		return nil, err
	}
	if app.Modified, err = model.EncodeArticleList(input.Modified); err != nil {
		return nil, err
	}
	if app.Repealed, err = model.EncodeArticleList(input.Repealed); err != nil {
		return nil, err
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	logrus.Infof("recorded pending amendment %s for code %s", app.AmendmentRef, app.CodeID)

	return app, nil
}

// Get retrieves a ledger row by its natural key.
func (s *LedgerService) Get(ctx context.Context, amendmentRef, codeID string) (*model.AmendmentApplication, error) {
	return s.store.GetApplication(ctx, amendmentRef, codeID)
}

// MarkApplied moves a pending attempt to applied, which is permanently
// terminal. Any other source state is ErrIllegalTransition.
func (s *LedgerService) MarkApplied(ctx context.Context, amendmentRef, codeID string, appliedAt time.Time) error {
	if err := s.store.MarkApplied(ctx, amendmentRef, codeID, appliedAt); err != nil {
		return err
	}

	logrus.Infof("amendment %s applied to code %s", amendmentRef, codeID)
	return nil
}

// MarkFailed moves a pending attempt to failed with the recorded error.
func (s *LedgerService) MarkFailed(ctx context.Context, amendmentRef, codeID, errorMessage string) error {
	if err := s.store.MarkFailed(ctx, amendmentRef, codeID, errorMessage); err != nil {
		return err
	}

	logrus.Warnf("amendment %s failed for code %s: %s", amendmentRef, codeID, errorMessage)
	return nil
}

// MarkConflict moves a pending attempt to conflict. The conflict was detected
// by the orchestrator; the ledger just stores it.
func (s *LedgerService) MarkConflict(ctx context.Context, amendmentRef, codeID, details string) error {
	if err := s.store.MarkConflict(ctx, amendmentRef, codeID, details); err != nil {
		return err
	}

	logrus.Warnf("amendment %s conflicted for code %s: %s", amendmentRef, codeID, details)
	return nil
}

// Retry moves a failed or conflict attempt back to pending, updating the
// existing row. Applied rows are never reopened.
func (s *LedgerService) Retry(ctx context.Context, amendmentRef, codeID string) error {
	if err := s.store.RetryApplication(ctx, amendmentRef, codeID); err != nil {
		return err
	}

	logrus.Infof("amendment %s reset to pending for code %s", amendmentRef, codeID)
	return nil
}

// History retrieves a code's ledger rows ordered by effective date ascending,
// optionally filtered by status.
func (s *LedgerService) History(ctx context.Context, codeID string, status *model.ApplicationStatus) ([]*model.AmendmentApplication, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *status)
	}

	return s.store.ListApplications(ctx, codeID, status)
}
