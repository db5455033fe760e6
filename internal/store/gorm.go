package store

import (
	"context"
	"errors"
	"time"

	"github.com/lexhist/lexhist/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

// translate maps the gorm miss onto the store sentinel. Other storage faults
// pass through untouched so callers can apply their own retry policy.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormStore) CreateCode(ctx context.Context, code *model.Code) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Code{}).Where("id = ?", code.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCodeExists
		}

		return tx.Create(code).Error
	})
}

func (g *GormStore) GetCode(ctx context.Context, id string) (*model.Code, error) {
	var code model.Code
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&code).Error
	if err != nil {
		return nil, translate(err)
	}
	return &code, nil
}

func (g *GormStore) ListCodes(ctx context.Context) ([]*model.Code, error) {
	var codes []*model.Code
	err := g.db.WithContext(ctx).Order("id asc").Find(&codes).Error
	return codes, err
}

func (g *GormStore) RecordAmendmentOutcome(ctx context.Context, id string, effectiveDate time.Time) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var code model.Code
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&code).Error
		if err != nil {
			return translate(err)
		}

		code.AmendmentCount++
		if code.LastAmendedAt == nil || effectiveDate.After(*code.LastAmendedAt) {
			code.LastAmendedAt = &effectiveDate
		}

		return tx.Save(&code).Error
	})
}

func (g *GormStore) SetConsolidationStatus(ctx context.Context, id string, status model.ConsolidationStatus) error {
	res := g.db.WithContext(ctx).Model(&model.Code{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendVersion holds the current-pointer invariant: the insert and the
// conditional flip of the previous current row commit or roll back together.
// The parent code row is locked first so concurrent appends serialise even
// when the article has no rows yet and there is no current row to lock.
func (g *GormStore) AppendVersion(ctx context.Context, version *model.ArticleVersion) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var code model.Code
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", version.CodeID).
			First(&code).Error
		if err != nil {
			return translate(err)
		}

		var current model.ArticleVersion
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code_id = ? AND article = ? AND is_current = ?", version.CodeID, version.Article, true).
			First(&current).Error
		hasCurrent := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var duplicates int64
		err = tx.Model(&model.ArticleVersion{}).
			Where("code_id = ? AND article = ? AND effective_date = ?",
				version.CodeID, version.Article, version.EffectiveDate).
			Count(&duplicates).Error
		if err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrDuplicateVersion
		}

		// The pointer moves only when the new version is strictly newer
		// than every existing one. Backfilled history never touches it.
		var newer int64
		err = tx.Model(&model.ArticleVersion{}).
			Where("code_id = ? AND article = ? AND effective_date > ?",
				version.CodeID, version.Article, version.EffectiveDate).
			Count(&newer).Error
		if err != nil {
			return err
		}

		version.IsCurrent = newer == 0
		if version.IsCurrent && hasCurrent {
			err = tx.Model(&model.ArticleVersion{}).
				Where("id = ?", current.ID).
				Update("is_current", false).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(version).Error
	})
}

func (g *GormStore) GetCurrentVersion(ctx context.Context, codeID, article string) (*model.ArticleVersion, error) {
	var version model.ArticleVersion
	err := g.db.WithContext(ctx).
		Where("code_id = ? AND article = ? AND is_current = ? AND is_repealed = ?",
			codeID, article, true, false).
		First(&version).Error
	if err != nil {
		return nil, translate(err)
	}
	return &version, nil
}

func (g *GormStore) GetVersionAsOf(ctx context.Context, codeID, article string, at time.Time) (*model.ArticleVersion, error) {
	var version model.ArticleVersion
	err := g.db.WithContext(ctx).
		Where("code_id = ? AND article = ? AND effective_date <= ?", codeID, article, at).
		Order("effective_date desc").
		First(&version).Error
	if err != nil {
		return nil, translate(err)
	}
	return &version, nil
}

func (g *GormStore) GetVersionChain(ctx context.Context, codeID, article string) ([]*model.ArticleVersion, error) {
	var versions []*model.ArticleVersion
	err := g.db.WithContext(ctx).
		Where("code_id = ? AND article = ?", codeID, article).
		Order("effective_date asc").
		Find(&versions).Error
	return versions, err
}

func (g *GormStore) ListArticles(ctx context.Context, codeID string, filter VersionFilter, limit, offset int) ([]*model.ArticleVersion, int64, error) {
	query := g.db.WithContext(ctx).Model(&model.ArticleVersion{}).Where("code_id = ?", codeID)
	if filter.IsCurrent != nil {
		query = query.Where("is_current = ?", *filter.IsCurrent)
	}
	if filter.IsRepealed != nil {
		query = query.Where("is_repealed = ?", *filter.IsRepealed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("sort_key asc, article asc, effective_date asc")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var versions []*model.ArticleVersion
	if err := query.Find(&versions).Error; err != nil {
		return nil, 0, err
	}

	return versions, total, nil
}

func (g *GormStore) ListArticleNumbers(ctx context.Context, codeID string) ([]string, error) {
	var articles []string
	err := g.db.WithContext(ctx).Model(&model.ArticleVersion{}).
		Where("code_id = ?", codeID).
		Group("article").
		Order("min(sort_key) asc, article asc").
		Pluck("article", &articles).Error
	return articles, err
}

func (g *GormStore) CreateApplication(ctx context.Context, app *model.AmendmentApplication) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.AmendmentApplication{}).
			Where("amendment_ref = ? AND code_id = ?", app.AmendmentRef, app.CodeID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateAmendment
		}

		return tx.Create(app).Error
	})
}

func (g *GormStore) GetApplication(ctx context.Context, amendmentRef, codeID string) (*model.AmendmentApplication, error) {
	var app model.AmendmentApplication
	err := g.db.WithContext(ctx).
		Where("amendment_ref = ? AND code_id = ?", amendmentRef, codeID).
		First(&app).Error
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

// transition is a compare-and-set over the status column. A zero row count
// means the row is either absent or not in one of the allowed source states.
func (g *GormStore) transition(ctx context.Context, amendmentRef, codeID string, from []model.ApplicationStatus, updates map[string]any) error {
	res := g.db.WithContext(ctx).Model(&model.AmendmentApplication{}).
		Where("amendment_ref = ? AND code_id = ? AND status IN (?)", amendmentRef, codeID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := g.GetApplication(ctx, amendmentRef, codeID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

func (g *GormStore) MarkApplied(ctx context.Context, amendmentRef, codeID string, appliedAt time.Time) error {
	return g.transition(ctx, amendmentRef, codeID,
		[]model.ApplicationStatus{model.StatusPending},
		map[string]any{
			"status":     model.StatusApplied,
			"applied_at": appliedAt,
			"error":      "",
		})
}

func (g *GormStore) MarkFailed(ctx context.Context, amendmentRef, codeID, errorMessage string) error {
	return g.transition(ctx, amendmentRef, codeID,
		[]model.ApplicationStatus{model.StatusPending},
		map[string]any{
			"status": model.StatusFailed,
			"error":  errorMessage,
		})
}

func (g *GormStore) MarkConflict(ctx context.Context, amendmentRef, codeID, details string) error {
	return g.transition(ctx, amendmentRef, codeID,
		[]model.ApplicationStatus{model.StatusPending},
		map[string]any{
			"status": model.StatusConflict,
			"error":  details,
		})
}

func (g *GormStore) RetryApplication(ctx context.Context, amendmentRef, codeID string) error {
	return g.transition(ctx, amendmentRef, codeID,
		[]model.ApplicationStatus{model.StatusFailed, model.StatusConflict},
		map[string]any{
			"status": model.StatusPending,
			"error":  "",
		})
}

func (g *GormStore) ListApplications(ctx context.Context, codeID string, status *model.ApplicationStatus) ([]*model.AmendmentApplication, error) {
	query := g.db.WithContext(ctx).Where("code_id = ?", codeID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var apps []*model.AmendmentApplication
	err := query.Order("effective_date asc, created_at asc").Find(&apps).Error
	return apps, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
