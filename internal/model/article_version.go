package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ArticleVersion is one immutable snapshot of an article's text as of a given
// effective date. The (code, article, effective date) triple is unique.
//
// Rows never change after insert except for the IsCurrent flag, which moves
// from the previous holder to a newly appended version when the new effective
// date is strictly later than every existing one. At most one row per
// (code, article) carries IsCurrent=true at any time.
//
// Repeal is a terminal version row (IsRepealed=true, empty text), not an
// update of the previous version and never a delete.
type ArticleVersion struct {
	ID            string    `gorm:"primaryKey;uuid;not null"`
	CodeID        string    `gorm:"not null;uniqueIndex:ux_code_article_effective,priority:1"`
	Article       string    `gorm:"not null;uniqueIndex:ux_code_article_effective,priority:2"`
	EffectiveDate time.Time `gorm:"not null;uniqueIndex:ux_code_article_effective,priority:3"`
	SortKey       string    `gorm:"not null;index"` // precomputed ordering key, see ArticleSortKey
	Title         string
	Text          string
	Compression   string  // codec used to store Text ("" means plain)
	ContentHash   string  // sha256 of the uncompressed text, for change detection
	AmendmentRef  *string // nil for baseline (original enactment) versions
	IsCurrent     bool    `gorm:"not null;index"`
	IsRepealed    bool    `gorm:"not null"`
	RepealedAt    *time.Time
	CreatedAt     time.Time
}

func (ArticleVersion) TableName() string {
	return "article_versions"
}

// HashText returns the content hash recorded on version rows.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
