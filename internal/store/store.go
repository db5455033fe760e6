package store

import (
	"context"
	"time"

	"github.com/lexhist/lexhist/internal/model"
)

type Store interface {
	CodeStore
	VersionStore
	LedgerStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type CodeStore interface {
	// CreateCode registers a new code. ErrCodeExists when the id is taken.
	CreateCode(ctx context.Context, code *model.Code) error
	// GetCode retrieves a code by id.
	GetCode(ctx context.Context, id string) (*model.Code, error)
	// ListCodes retrieves all registered codes ordered by id.
	ListCodes(ctx context.Context) ([]*model.Code, error)
	// RecordAmendmentOutcome bumps the amendment counter and advances the
	// last-amended date when effectiveDate is newer than the recorded one.
	RecordAmendmentOutcome(ctx context.Context, id string, effectiveDate time.Time) error
	// SetConsolidationStatus sets the consolidation status explicitly.
	SetConsolidationStatus(ctx context.Context, id string, status model.ConsolidationStatus) error
}

// VersionFilter narrows ListArticles. Nil fields match everything.
type VersionFilter struct {
	IsCurrent  *bool
	IsRepealed *bool
}

type VersionStore interface {
	// AppendVersion inserts a version row and, when its effective date is
	// strictly newer than every existing version of the article, moves the
	// current pointer to it in the same transaction. Backfilling an older
	// date never touches the pointer. The parent code row is locked for the
	// duration, so appends to the same code serialise. ErrNotFound when the
	// code is not registered, ErrDuplicateVersion when the
	// (code, article, effective date) triple already exists.
	AppendVersion(ctx context.Context, version *model.ArticleVersion) error
	// GetCurrentVersion retrieves the current, non-repealed version of an
	// article. ErrNotFound covers absent and repealed articles alike.
	GetCurrentVersion(ctx context.Context, codeID, article string) (*model.ArticleVersion, error)
	// GetVersionAsOf retrieves the version with the greatest effective date
	// at or before the given date, repealed or not.
	GetVersionAsOf(ctx context.Context, codeID, article string, at time.Time) (*model.ArticleVersion, error)
	// GetVersionChain retrieves every version of an article ordered by
	// effective date ascending.
	GetVersionChain(ctx context.Context, codeID, article string) ([]*model.ArticleVersion, error)
	// ListArticles retrieves version rows of a code in article order
	// (numeric first, then lexical). limit <= 0 disables pagination.
	ListArticles(ctx context.Context, codeID string, filter VersionFilter, limit, offset int) ([]*model.ArticleVersion, int64, error)
	// ListArticleNumbers retrieves the distinct article numbers ever seen
	// for a code, in article order.
	ListArticleNumbers(ctx context.Context, codeID string) ([]string, error)
}

type LedgerStore interface {
	// CreateApplication inserts a ledger row in status pending.
	// ErrDuplicateAmendment when the (amendment ref, code) pair exists.
	CreateApplication(ctx context.Context, app *model.AmendmentApplication) error
	// GetApplication retrieves a ledger row by its natural key.
	GetApplication(ctx context.Context, amendmentRef, codeID string) (*model.AmendmentApplication, error)
	// MarkApplied moves a pending row to applied. ErrIllegalTransition from
	// any other state; applied is permanently terminal.
	MarkApplied(ctx context.Context, amendmentRef, codeID string, appliedAt time.Time) error
	// MarkFailed moves a pending row to failed, recording the error.
	MarkFailed(ctx context.Context, amendmentRef, codeID, errorMessage string) error
	// MarkConflict moves a pending row to conflict, recording the details.
	MarkConflict(ctx context.Context, amendmentRef, codeID, details string) error
	// RetryApplication moves a failed or conflict row back to pending,
	// updating the row in place.
	RetryApplication(ctx context.Context, amendmentRef, codeID string) error
	// ListApplications retrieves a code's ledger rows ordered by effective
	// date ascending, optionally filtered by status.
	ListApplications(ctx context.Context, codeID string, status *model.ApplicationStatus) ([]*model.AmendmentApplication, error)
}
