package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/tester"
	"github.com/stretchr/testify/assert"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func version(codeID, article, effective, text string) *model.ArticleVersion {
	return &model.ArticleVersion{
		ID:            uuid.New().String(),
		CodeID:        codeID,
		Article:       article,
		EffectiveDate: date(effective),
		SortKey:       model.ArticleSortKey(article),
		Text:          text,
		ContentHash:   model.HashText(text),
	}
}

func application(ref, codeID, effective string) *model.AmendmentApplication {
	return &model.AmendmentApplication{
		ID:            uuid.New().String(),
		AmendmentRef:  ref,
		CodeID:        codeID,
		Kind:          model.AmendmentModification,
		EffectiveDate: date(effective),
		Status:        model.StatusPending,
		Affected:      "[]",
		Added:         "[]",
		Modified:      "[]",
		Repealed:      "[]",
	}
}

func createCode(t *testing.T, s *GormStore, codeID string) {
	t.Helper()
	assert.NoError(t, s.CreateCode(context.TODO(), &model.Code{
		ID:         codeID,
		Name:       "Civil Code",
		SourceDate: date("2001-11-30"),
		Status:     model.ConsolidationNotStarted,
	}))
}

// currentCount checks the single-current-row invariant directly against the table.
func currentCount(t *testing.T, codeID, article string) int64 {
	var count int64
	err := tester.TestDB().Model(&model.ArticleVersion{}).
		Where("code_id = ? AND article = ? AND is_current = ?", codeID, article, true).
		Count(&count).Error
	assert.NoError(t, err)
	return count
}

func TestAppendVersion_MovesCurrentPointer(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "pointer-" + uuid.New().String()
	createCode(t, s, codeID)

	v1 := version(codeID, "80", "2001-11-30", "T0")
	assert.NoError(t, s.AppendVersion(ctx, v1))
	assert.True(t, v1.IsCurrent)

	v2 := version(codeID, "80", "2020-01-01", "T1")
	assert.NoError(t, s.AppendVersion(ctx, v2))
	assert.True(t, v2.IsCurrent)

	current, err := s.GetCurrentVersion(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)

	assert.EqualValues(t, 1, currentCount(t, codeID, "80"))

	chain, err := s.GetVersionChain(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Len(t, chain, 2)
	assert.False(t, chain[0].IsCurrent)
	assert.True(t, chain[1].IsCurrent)
}

func TestAppendVersion_BackfillKeepsPointer(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "backfill-" + uuid.New().String()
	createCode(t, s, codeID)

	v2 := version(codeID, "15", "2020-01-01", "T1")
	assert.NoError(t, s.AppendVersion(ctx, v2))

	v1 := version(codeID, "15", "2001-11-30", "T0")
	assert.NoError(t, s.AppendVersion(ctx, v1))
	assert.False(t, v1.IsCurrent)

	current, err := s.GetCurrentVersion(ctx, codeID, "15")
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)

	assert.EqualValues(t, 1, currentCount(t, codeID, "15"))
}

func TestAppendVersion_DuplicateDate(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "dup-" + uuid.New().String()
	createCode(t, s, codeID)

	assert.NoError(t, s.AppendVersion(ctx, version(codeID, "80", "2020-01-01", "T1")))

	err := s.AppendVersion(ctx, version(codeID, "80", "2020-01-01", "T1 again"))
	assert.ErrorIs(t, err, ErrDuplicateVersion)

	chain, err := s.GetVersionChain(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Len(t, chain, 1)
}

// Appends lock the parent code row before touching version rows, so a first
// append and an existing-article append contend on the same lock and an
// unregistered code is rejected inside the transaction.
func TestAppendVersion_UnknownCode(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "unknown-" + uuid.New().String()

	err := s.AppendVersion(ctx, version(codeID, "80", "2020-01-01", "T1"))
	assert.ErrorIs(t, err, ErrNotFound)

	chain, err := s.GetVersionChain(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Len(t, chain, 0)
}

func TestGetVersionAsOf(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "asof-" + uuid.New().String()
	createCode(t, s, codeID)

	v1 := version(codeID, "80", "2001-11-30", "T0")
	v2 := version(codeID, "80", "2020-01-01", "T1")
	assert.NoError(t, s.AppendVersion(ctx, v1))
	assert.NoError(t, s.AppendVersion(ctx, v2))

	got, err := s.GetVersionAsOf(ctx, codeID, "80", date("2021-06-01"))
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, got.ID)

	// exact boundary resolves to the version effective that day
	got, err = s.GetVersionAsOf(ctx, codeID, "80", date("2020-01-01"))
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, got.ID)

	got, err = s.GetVersionAsOf(ctx, codeID, "80", date("2010-05-01"))
	assert.NoError(t, err)
	assert.Equal(t, v1.ID, got.ID)

	_, err = s.GetVersionAsOf(ctx, codeID, "80", date("1999-01-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCurrentVersion_Repealed(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "repeal-" + uuid.New().String()
	createCode(t, s, codeID)

	assert.NoError(t, s.AppendVersion(ctx, version(codeID, "80", "2001-11-30", "T0")))

	repeal := version(codeID, "80", "2023-01-01", "")
	repeal.IsRepealed = true
	repealedAt := date("2023-01-01")
	repeal.RepealedAt = &repealedAt
	assert.NoError(t, s.AppendVersion(ctx, repeal))

	_, err := s.GetCurrentVersion(ctx, codeID, "80")
	assert.ErrorIs(t, err, ErrNotFound)

	chain, err := s.GetVersionChain(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Len(t, chain, 2)
	assert.True(t, chain[1].IsCurrent)
	assert.True(t, chain[1].IsRepealed)
}

func TestListArticles_OrderAndPagination(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "list-" + uuid.New().String()
	createCode(t, s, codeID)

	for _, article := range []string{"80bis", "10", "2.1", "2"} {
		assert.NoError(t, s.AppendVersion(ctx, version(codeID, article, "2001-11-30", "text")))
	}

	versions, total, err := s.ListArticles(ctx, codeID, VersionFilter{}, 0, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 4, total)

	var order []string
	for _, v := range versions {
		order = append(order, v.Article)
	}
	assert.Equal(t, []string{"2", "10", "2.1", "80bis"}, order)

	page, total, err := s.ListArticles(ctx, codeID, VersionFilter{}, 2, 2)
	assert.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 2)
	assert.Equal(t, "2.1", page[0].Article)
	assert.Equal(t, "80bis", page[1].Article)
}

func TestListArticleNumbers_Order(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "numbers-" + uuid.New().String()
	createCode(t, s, codeID)

	for _, article := range []string{"80bis", "10", "2.1", "2"} {
		assert.NoError(t, s.AppendVersion(ctx, version(codeID, article, "2001-11-30", "text")))
		// a second version must not duplicate the article number
		assert.NoError(t, s.AppendVersion(ctx, version(codeID, article, "2020-01-01", "text v1")))
	}

	articles, err := s.ListArticleNumbers(ctx, codeID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"2", "10", "2.1", "80bis"}, articles)
}

func TestListArticles_Filters(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "filter-" + uuid.New().String()
	createCode(t, s, codeID)

	assert.NoError(t, s.AppendVersion(ctx, version(codeID, "1", "2001-11-30", "old")))
	assert.NoError(t, s.AppendVersion(ctx, version(codeID, "1", "2020-01-01", "new")))

	repeal := version(codeID, "2", "2020-01-01", "")
	repeal.IsRepealed = true
	assert.NoError(t, s.AppendVersion(ctx, repeal))

	current := true
	versions, total, err := s.ListArticles(ctx, codeID, VersionFilter{IsCurrent: &current}, 0, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, versions, 2)

	notRepealed := false
	versions, total, err = s.ListArticles(ctx, codeID, VersionFilter{IsCurrent: &current, IsRepealed: &notRepealed}, 0, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "1", versions[0].Article)
}

func TestCodeStore(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "code-" + uuid.New().String()

	code := &model.Code{
		ID:         codeID,
		Name:       "Civil Code",
		SourceDate: date("2001-11-30"),
		Status:     model.ConsolidationNotStarted,
	}
	assert.NoError(t, s.CreateCode(ctx, code))

	err := s.CreateCode(ctx, &model.Code{ID: codeID, Name: "Civil Code again"})
	assert.ErrorIs(t, err, ErrCodeExists)

	_, err = s.GetCode(ctx, "missing-"+uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.RecordAmendmentOutcome(ctx, codeID, date("2020-01-01")))
	// an older amendment bumps the counter but not the date
	assert.NoError(t, s.RecordAmendmentOutcome(ctx, codeID, date("2010-01-01")))

	got, err := s.GetCode(ctx, codeID)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, got.AmendmentCount)
	assert.True(t, got.LastAmendedAt.Equal(date("2020-01-01")))

	assert.NoError(t, s.SetConsolidationStatus(ctx, codeID, model.ConsolidationInProgress))
	got, err = s.GetCode(ctx, codeID)
	assert.NoError(t, err)
	assert.Equal(t, model.ConsolidationInProgress, got.Status)

	err = s.SetConsolidationStatus(ctx, "missing-"+uuid.New().String(), model.ConsolidationComplete)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerStore_Idempotency(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "ledger-" + uuid.New().String()

	assert.NoError(t, s.CreateApplication(ctx, application("amdt-1", codeID, "2020-01-01")))

	err := s.CreateApplication(ctx, application("amdt-1", codeID, "2020-01-01"))
	assert.ErrorIs(t, err, ErrDuplicateAmendment)

	apps, err := s.ListApplications(ctx, codeID, nil)
	assert.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestLedgerStore_Transitions(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "transitions-" + uuid.New().String()

	assert.NoError(t, s.CreateApplication(ctx, application("amdt-1", codeID, "2020-01-01")))

	appliedAt := time.Now().UTC()
	assert.NoError(t, s.MarkApplied(ctx, "amdt-1", codeID, appliedAt))

	app, err := s.GetApplication(ctx, "amdt-1", codeID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApplied, app.Status)
	assert.NotNil(t, app.AppliedAt)

	// applied is permanently terminal
	assert.ErrorIs(t, s.MarkApplied(ctx, "amdt-1", codeID, appliedAt), ErrIllegalTransition)
	assert.ErrorIs(t, s.MarkFailed(ctx, "amdt-1", codeID, "boom"), ErrIllegalTransition)
	assert.ErrorIs(t, s.MarkConflict(ctx, "amdt-1", codeID, "overlap"), ErrIllegalTransition)
	assert.ErrorIs(t, s.RetryApplication(ctx, "amdt-1", codeID), ErrIllegalTransition)

	// transitions on a missing row are NotFound, not IllegalTransition
	assert.ErrorIs(t, s.MarkApplied(ctx, "amdt-x", codeID, appliedAt), ErrNotFound)
}

func TestLedgerStore_RetryInPlace(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "retry-" + uuid.New().String()

	assert.NoError(t, s.CreateApplication(ctx, application("amdt-4", codeID, "2020-01-01")))
	assert.NoError(t, s.MarkFailed(ctx, "amdt-4", codeID, "text resolution failed"))

	app, err := s.GetApplication(ctx, "amdt-4", codeID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusFailed, app.Status)
	assert.Equal(t, "text resolution failed", app.Error)

	assert.NoError(t, s.RetryApplication(ctx, "amdt-4", codeID))

	app, err = s.GetApplication(ctx, "amdt-4", codeID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, app.Status)
	assert.Empty(t, app.Error)

	apps, err := s.ListApplications(ctx, codeID, nil)
	assert.NoError(t, err)
	assert.Len(t, apps, 1)

	// conflict rows retry the same way
	assert.NoError(t, s.MarkConflict(ctx, "amdt-4", codeID, "out of order"))
	assert.NoError(t, s.RetryApplication(ctx, "amdt-4", codeID))

	app, err = s.GetApplication(ctx, "amdt-4", codeID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, app.Status)
}

func TestLedgerStore_History(t *testing.T) {
	s := NewGormStore(tester.TestDB())
	ctx := context.TODO()
	codeID := "history-" + uuid.New().String()

	assert.NoError(t, s.CreateApplication(ctx, application("amdt-b", codeID, "2022-12-30")))
	assert.NoError(t, s.CreateApplication(ctx, application("amdt-a", codeID, "2020-01-01")))
	assert.NoError(t, s.MarkFailed(ctx, "amdt-b", codeID, "boom"))

	apps, err := s.ListApplications(ctx, codeID, nil)
	assert.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Equal(t, "amdt-a", apps[0].AmendmentRef)
	assert.Equal(t, "amdt-b", apps[1].AmendmentRef)

	failed := model.StatusFailed
	apps, err = s.ListApplications(ctx, codeID, &failed)
	assert.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, "amdt-b", apps[0].AmendmentRef)
}
