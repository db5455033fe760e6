package model

import (
	"time"
)

// ConsolidationStatus tracks how far the historical consolidation of a code
// has progressed. The engine never computes "complete" on its own; the
// orchestrator sets it explicitly.
type ConsolidationStatus string

const (
	ConsolidationNotStarted ConsolidationStatus = "not_started"
	ConsolidationInProgress ConsolidationStatus = "in_progress"
	ConsolidationComplete   ConsolidationStatus = "complete"
)

// Valid reports whether s is one of the known consolidation statuses.
func (s ConsolidationStatus) Valid() bool {
	switch s {
	case ConsolidationNotStarted, ConsolidationInProgress, ConsolidationComplete:
		return true
	}
	return false
}

// Code is one consolidated legal code (a civil code, a labor code, ...).
// Rows are created once at base import and mutated only by the orchestrator
// after amendment attempts; they are never deleted.
type Code struct {
	ID             string `gorm:"primaryKey;not null"`
	Name           string `gorm:"not null"`
	ShortName      string
	Description    string
	SourceRef      string              // the source document the base text was imported from
	SourceDate     time.Time           // publication date of the base text
	Status         ConsolidationStatus `gorm:"not null;default:'not_started'"`
	AmendmentCount int64               // number of amendments applied so far
	LastAmendedAt  *time.Time          // effective date of the newest applied amendment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Code) TableName() string {
	return "codes"
}
