package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestResolverService_CurrentSnapshot(t *testing.T) {
	registry, versions, _, resolver := newServices()
	ctx := context.TODO()
	codeID := "snap-" + uuid.New().String()
	registerCode(t, registry, codeID)

	appendText(t, versions, codeID, "1", "2001-11-30", "one", nil)
	appendText(t, versions, codeID, "2", "2001-11-30", "two v0", nil)
	appendText(t, versions, codeID, "2", "2020-01-01", "two v1", nil)

	// article 3 existed and was later repealed
	appendText(t, versions, codeID, "3", "2001-11-30", "three", nil)
	_, err := versions.Append(ctx, AppendVersionInput{
		CodeID:        codeID,
		Article:       "3",
		EffectiveDate: date("2022-01-01"),
		Repealed:      true,
	})
	assert.NoError(t, err)

	snapshot, err := resolver.CurrentSnapshot(ctx, codeID)
	assert.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.Equal(t, "one", snapshot["1"].Text)
	assert.Equal(t, "two v1", snapshot["2"].Text)
	assert.NotContains(t, snapshot, "3")
}

func TestResolverService_PointInTimeSnapshot(t *testing.T) {
	registry, versions, _, resolver := newServices()
	ctx := context.TODO()
	codeID := "pit-" + uuid.New().String()
	registerCode(t, registry, codeID)

	appendText(t, versions, codeID, "1", "2001-11-30", "one", nil)
	appendText(t, versions, codeID, "2", "2010-06-15", "two", nil)
	appendText(t, versions, codeID, "3", "2001-11-30", "three", nil)
	_, err := versions.Append(ctx, AppendVersionInput{
		CodeID:        codeID,
		Article:       "3",
		EffectiveDate: date("2008-01-01"),
		Repealed:      true,
	})
	assert.NoError(t, err)

	// 2005: article 2 does not exist yet, article 3 is still in force
	snapshot, err := resolver.PointInTimeSnapshot(ctx, codeID, "2005-01-01")
	assert.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.NotContains(t, snapshot, "2")
	assert.False(t, snapshot["3"].IsRepealed)
	assert.Equal(t, "three", snapshot["3"].Text)

	// 2009: article 3 resolves to its repeal, distinguishable from absence
	snapshot, err = resolver.PointInTimeSnapshot(ctx, codeID, "2009-01-01")
	assert.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.NotContains(t, snapshot, "2")
	assert.True(t, snapshot["3"].IsRepealed)

	// 2011: all three known, article 3 still flagged repealed
	snapshot, err = resolver.PointInTimeSnapshot(ctx, codeID, "2011-01-01")
	assert.NoError(t, err)
	assert.Len(t, snapshot, 3)
	assert.Equal(t, "two", snapshot["2"].Text)
	assert.True(t, snapshot["3"].IsRepealed)

	_, err = resolver.PointInTimeSnapshot(ctx, codeID, "01/01/2011")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolverService_UnknownCode(t *testing.T) {
	_, _, _, resolver := newServices()

	_, err := resolver.CurrentSnapshot(context.TODO(), "missing-"+uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = resolver.PointInTimeSnapshot(context.TODO(), "missing-"+uuid.New().String(), "2020-01-01")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolverService_AmendmentChain(t *testing.T) {
	registry, versions, _, resolver := newServices()
	ctx := context.TODO()
	codeID := "chain-" + uuid.New().String()
	registerCode(t, registry, codeID)

	a1 := "amdt-1"
	appendText(t, versions, codeID, "80", "2001-11-30", "T0", nil)
	appendText(t, versions, codeID, "80", "2020-01-01", "T1", &a1)

	entries, err := resolver.AmendmentChain(ctx, codeID, "80")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.False(t, entries[0].IsCurrent)
	assert.Equal(t, "T0", entries[0].Version.Text)
	assert.Nil(t, entries[0].Version.AmendmentRef)

	assert.True(t, entries[1].IsCurrent)
	assert.False(t, entries[1].IsRepealed)
	assert.Equal(t, "T1", entries[1].Version.Text)
	assert.Equal(t, a1, *entries[1].Version.AmendmentRef)

	_, err = resolver.AmendmentChain(ctx, codeID, "999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
