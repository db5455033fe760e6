package model

import (
	"encoding/json"
	"time"
)

// AmendmentKind classifies what an amendment did to a code.
type AmendmentKind string

const (
	AmendmentAddition     AmendmentKind = "addition"
	AmendmentModification AmendmentKind = "modification"
	AmendmentRepeal       AmendmentKind = "repeal"
	AmendmentMixed        AmendmentKind = "mixed"
)

func (k AmendmentKind) Valid() bool {
	switch k {
	case AmendmentAddition, AmendmentModification, AmendmentRepeal, AmendmentMixed:
		return true
	}
	return false
}

// ApplicationStatus is the ledger state of one amendment-application attempt.
//
// Legal transitions: pending -> applied | failed | conflict on the first
// attempt, failed | conflict -> pending via an explicit retry. Applied is
// permanently terminal.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApplied  ApplicationStatus = "applied"
	StatusFailed   ApplicationStatus = "failed"
	StatusConflict ApplicationStatus = "conflict"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusFailed, StatusConflict:
		return true
	}
	return false
}

// AmendmentApplication is one ledger row: what applying one amendment to one
// code attempted and how it ended. The (amendment ref, code) pair is unique,
// which makes reprocessing the same amendment a DuplicateAmendment instead of
// a second row. A retried conflict updates this row in place.
type AmendmentApplication struct {
	ID            string            `gorm:"primaryKey;uuid;not null"`
	AmendmentRef  string            `gorm:"not null;uniqueIndex:ux_amendment_code,priority:1"`
	CodeID        string            `gorm:"not null;uniqueIndex:ux_amendment_code,priority:2;index"`
	Kind          AmendmentKind     `gorm:"not null"`
	EffectiveDate time.Time         `gorm:"not null"`
	Status        ApplicationStatus `gorm:"not null;default:'pending'"`
	Affected      string            // JSON array of article numbers touched
	Added         string            // JSON array of article numbers introduced
	Modified      string            // JSON array of article numbers rewritten
	Repealed      string            // JSON array of article numbers repealed
	Error         string            // set on failed/conflict outcomes
	AppliedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AmendmentApplication) TableName() string {
	return "amendment_applications"
}

// EncodeArticleList serialises article numbers for the list columns above.
// A nil list encodes as an empty array so the columns are always valid JSON.
func EncodeArticleList(articles []string) (string, error) {
	if articles == nil {
		articles = make([]string, 0)
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeArticleList is the inverse of EncodeArticleList.
func DecodeArticleList(encoded string) ([]string, error) {
	if encoded == "" {
		return []string{}, nil
	}
	var articles []string
	if err := json.Unmarshal([]byte(encoded), &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
