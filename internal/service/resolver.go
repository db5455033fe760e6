package service

import (
	"context"
	"errors"

	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/store"
)

// NewResolverService creates a new ResolverService.
func NewResolverService(store store.Store) *ResolverService {
	return &ResolverService{
		store: store,
	}
}

// ResolverService answers the read-only resolution queries layered over the
// version store: whole-code snapshots and per-article amendment chains. It
// never writes.
type ResolverService struct {
	store store.Store
}

// CurrentSnapshot maps every article of a code to its current version.
// Articles without a current version (repealed, or known only historically)
// are omitted, not defaulted.
func (r *ResolverService) CurrentSnapshot(ctx context.Context, codeID string) (map[string]*model.ArticleVersion, error) {
	if _, err := r.store.GetCode(ctx, codeID); err != nil {
		return nil, err
	}

	current, notRepealed := true, false
	versions, _, err := r.store.ListArticles(ctx, codeID, store.VersionFilter{
		IsCurrent:  &current,
		IsRepealed: &notRepealed,
	}, 0, 0)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]*model.ArticleVersion, len(versions))
	for _, version := range versions {
		if err := DecodeText(version); err != nil {
			return nil, err
		}
		snapshot[version.Article] = version
	}

	return snapshot, nil
}

// PointInTimeSnapshot resolves every article the code has ever known as of a
// YYYY-MM-DD date. Articles that did not yet exist are omitted; articles whose
// resolved version is a repeal appear with IsRepealed set, so callers can tell
// "never existed yet" from "existed and was later repealed".
func (r *ResolverService) PointInTimeSnapshot(ctx context.Context, codeID, date string) (map[string]*model.ArticleVersion, error) {
	at, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	if _, err := r.store.GetCode(ctx, codeID); err != nil {
		return nil, err
	}

	articles, err := r.store.ListArticleNumbers(ctx, codeID)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]*model.ArticleVersion, len(articles))
	for _, article := range articles {
		version, err := r.store.GetVersionAsOf(ctx, codeID, article, at)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := DecodeText(version); err != nil {
			return nil, err
		}
		snapshot[article] = version
	}

	return snapshot, nil
}

// ChainEntry is one link of an article's amendment chain, annotated for
// audit and history display.
type ChainEntry struct {
	Version    *model.ArticleVersion
	IsCurrent  bool
	IsRepealed bool
}

// AmendmentChain retrieves an article's full version history, oldest first.
// ErrNotFound when the article was never seen.
func (r *ResolverService) AmendmentChain(ctx context.Context, codeID, article string) ([]ChainEntry, error) {
	versions, err := r.store.GetVersionChain(ctx, codeID, article)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, store.ErrNotFound
	}

	entries := make([]ChainEntry, 0, len(versions))
	for _, version := range versions {
		if err := DecodeText(version); err != nil {
			return nil, err
		}

		entries = append(entries, ChainEntry{
			Version:    version,
			IsCurrent:  version.IsCurrent,
			IsRepealed: version.IsRepealed,
		})
	}

	return entries, nil
}
