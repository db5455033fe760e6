package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/sirupsen/logrus"
)

// NewRegistryService creates a new RegistryService.
func NewRegistryService(store store.Store) *RegistryService {
	return &RegistryService{
		store: store,
	}
}

// RegistryService manages per-code metadata and consolidation status.
type RegistryService struct {
	store store.Store
}

// RegisterCodeInput carries the metadata recorded when a code is first registered.
type RegisterCodeInput struct {
	Name        string
	ShortName   string
	Description string
	SourceRef   string
	SourceDate  time.Time
}

// Register creates a new code record. Pure insert: an existing id fails with
// ErrCodeExists, there are no merge semantics.
func (s *RegistryService) Register(ctx context.Context, codeID string, input RegisterCodeInput) (*model.Code, error) {
	code := &model.Code{
		ID:          codeID,
		Name:        input.Name,
		ShortName:   input.ShortName,
		Description: input.Description,
		SourceRef:   input.SourceRef,
		SourceDate:  input.SourceDate,
		Status:      model.ConsolidationNotStarted,
	}

	if err := s.store.CreateCode(ctx, code); err != nil {
		return nil, err
	}

	logrus.Infof("registered code %s (%s)", code.ID, code.Name)

	return code, nil
}

// Get retrieves a code record by id.
func (s *RegistryService) Get(ctx context.Context, codeID string) (*model.Code, error) {
	return s.store.GetCode(ctx, codeID)
}

// List retrieves all registered codes.
func (s *RegistryService) List(ctx context.Context) ([]*model.Code, error) {
	return s.store.ListCodes(ctx)
}

// RecordAmendmentOutcome bumps the amendment counter after a successful
// application and advances the last-amended date when the amendment is newer.
// Called by the orchestrator, never by the resolver.
func (s *RegistryService) RecordAmendmentOutcome(ctx context.Context, codeID string, effectiveDate time.Time) error {
	return s.store.RecordAmendmentOutcome(ctx, codeID, effectiveDate)
}

// SetConsolidationStatus sets the status explicitly. The engine never decides
// "complete" on its own.
func (s *RegistryService) SetConsolidationStatus(ctx context.Context, codeID string, status model.ConsolidationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return s.store.SetConsolidationStatus(ctx, codeID, status)
}
