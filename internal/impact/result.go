// Package impact orchestrates change-impact analysis: node resolution, the
// reverse-dependency walk, change classification, the semantic usage scan,
// and the merge/severity policy that produces one ImpactResult.
package impact

import (
	"time"
)

// Severity is a coarse ranking of downstream impact.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AffectedFile is one downstream file flagged by the analysis.
type AffectedFile struct {
	RepoID   string `json:"repoId"`
	FilePath string `json:"filePath"`
	Reason   string `json:"reason"`
	Context  string `json:"context,omitempty"`
}

// Diff echoes the analyzed contents back for display.
type Diff struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ImpactResult is the complete outcome of one analysis. It is a value
// object; the caller owns persistence and notification.
type ImpactResult struct {
	ProjectID     string         `json:"projectId"`
	ChangedFile   string         `json:"changedFile"`
	ChangedRepo   string         `json:"changedRepo"`
	AffectedFiles []AffectedFile `json:"affectedFiles"`
	IsBreaking    bool           `json:"isBreaking"`
	Severity      Severity       `json:"severity"`
	Explanation   string         `json:"explanation"`
	Timestamp     time.Time      `json:"timestamp"`
	Diff          *Diff          `json:"diff,omitempty"`
}
