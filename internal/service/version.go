package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexhist/lexhist/internal/cache"
	"github.com/lexhist/lexhist/internal/compress"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/sirupsen/logrus"
)

// NewVersionService creates a new VersionService. The cache may be nil.
func NewVersionService(compress compress.Compress, store store.Store, cache *cache.ArticleCache) *VersionService {
	return &VersionService{
		compress: compress,
		store:    store,
		cache:    cache,
	}
}

// VersionService is the write and read surface of the article version store.
// Article text is compressed at rest; every read path returns decoded text.
type VersionService struct {
	compress compress.Compress
	store    store.Store
	cache    *cache.ArticleCache
}

// AppendVersionInput describes one new version of one article, produced by
// the external text-resolution step.
type AppendVersionInput struct {
	CodeID        string
	Article       string
	EffectiveDate time.Time
	Text          string
	Title         string
	AmendmentRef  *string
	Repealed      bool
}

// Append inserts a new version row. The current pointer moves to it only when
// its effective date is strictly newer than every existing version of the
// article; backfilled history leaves the pointer alone.
func (s *VersionService) Append(ctx context.Context, input AppendVersionInput) (*model.ArticleVersion, error) {
	if _, err := s.store.GetCode(ctx, input.CodeID); err != nil {
		return nil, err
	}

	version, err := s.buildVersion(input)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendVersion(ctx, version); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, input.CodeID, input.Article); err != nil {
		logrus.Warnf("failed to invalidate cached article %s/%s: %v", input.CodeID, input.Article, err)
	}

	// hand back the plain text, unmarked, like DecodeText does
	version.Text = input.Text
	version.Compression = compress.AlgoNone
	return version, nil
}

// BaselineArticle is one article of a code's original enactment.
type BaselineArticle struct {
	Article string
	Title   string
	Text    string
}

// ImportBaseline inserts the original-enactment version of every article in
// one transaction, dated at the code's source date, with no amendment ref.
func (s *VersionService) ImportBaseline(ctx context.Context, codeID string, articles []BaselineArticle) error {
	code, err := s.store.GetCode(ctx, codeID)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		for _, article := range articles {
			version, err := s.buildVersion(AppendVersionInput{
				CodeID:        codeID,
				Article:       article.Article,
				EffectiveDate: code.SourceDate,
				Text:          article.Text,
				Title:         article.Title,
			})
			if err != nil {
				return err
			}

			if err := tx.AppendVersion(ctx, version); err != nil {
				return fmt.Errorf("article %s: %w", article.Article, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logrus.Infof("imported %d baseline articles for code %s", len(articles), codeID)

	return nil
}

// GetCurrent retrieves the current version of an article. ErrNotFound when
// the article is absent or its latest version repealed it. Cached entries
// hold already-decoded text.
func (s *VersionService) GetCurrent(ctx context.Context, codeID, article string) (*model.ArticleVersion, error) {
	if cached, err := s.cache.GetCurrent(ctx, codeID, article); err == nil {
		return cached, nil
	}

	version, err := s.store.GetCurrentVersion(ctx, codeID, article)
	if err != nil {
		return nil, err
	}

	if err := DecodeText(version); err != nil {
		return nil, err
	}

	if err := s.cache.SetCurrent(ctx, version); err != nil {
		logrus.Warnf("failed to cache article %s/%s: %v", codeID, article, err)
	}

	return version, nil
}

// GetAsOf retrieves the version in force on the given YYYY-MM-DD date.
// ErrNotFound when the article did not yet exist on that date.
func (s *VersionService) GetAsOf(ctx context.Context, codeID, article, date string) (*model.ArticleVersion, error) {
	at, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	version, err := s.store.GetVersionAsOf(ctx, codeID, article, at)
	if err != nil {
		return nil, err
	}

	if err := DecodeText(version); err != nil {
		return nil, err
	}

	return version, nil
}

// GetChain retrieves every version of an article, oldest first.
func (s *VersionService) GetChain(ctx context.Context, codeID, article string) ([]*model.ArticleVersion, error) {
	versions, err := s.store.GetVersionChain(ctx, codeID, article)
	if err != nil {
		return nil, err
	}

	for _, version := range versions {
		if err := DecodeText(version); err != nil {
			return nil, err
		}
	}

	return versions, nil
}

// List retrieves a page of a code's version rows in article order.
func (s *VersionService) List(ctx context.Context, codeID string, filter store.VersionFilter, limit, offset int) ([]*model.ArticleVersion, int64, error) {
	versions, total, err := s.store.ListArticles(ctx, codeID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, version := range versions {
		if err := DecodeText(version); err != nil {
			return nil, 0, err
		}
	}

	return versions, total, nil
}

func (s *VersionService) buildVersion(input AppendVersionInput) (*model.ArticleVersion, error) {
	encoded, err := s.compress.Encode([]byte(input.Text))
	if err != nil {
		return nil, err
	}

	version := &model.ArticleVersion{
		ID:            uuid.New().String(),
		CodeID:        input.CodeID,
		Article:       input.Article,
		EffectiveDate: input.EffectiveDate,
		SortKey:       model.ArticleSortKey(input.Article),
		Title:         input.Title,
		Text:          string(encoded),
		Compression:   s.compress.Name(),
		ContentHash:   model.HashText(input.Text),
		AmendmentRef:  input.AmendmentRef,
		IsRepealed:    input.Repealed,
	}
	if input.Repealed {
		version.RepealedAt = &input.EffectiveDate
	}

	return version, nil
}

// DecodeText restores the stored article text using the codec recorded on
// the row. Cached copies carry a cleared Compression field so a decoded row
// is never decoded twice.
func DecodeText(version *model.ArticleVersion) error {
	codec, err := compress.ForAlgo(version.Compression)
	if err != nil {
		return err
	}

	text, err := codec.Decode([]byte(version.Text))
	if err != nil {
		return fmt.Errorf("decoding text of article %s/%s: %w", version.CodeID, version.Article, err)
	}

	version.Text = string(text)
	version.Compression = compress.AlgoNone
	return nil
}
