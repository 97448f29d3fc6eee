// Package classify models the external change classifier: an opaque
// text-understanding collaborator that judges whether a diff is breaking and
// names the identifiers it changed.
package classify

import (
	"context"
)

// Classification is the structured judgment for one change.
type Classification struct {
	IsBreaking         bool     `json:"isBreaking"`
	Explanation        string   `json:"explanation"`
	ChangedIdentifiers []string `json:"changedIdentifiers"`
}

// DefaultExplanation is used when the collaborator returns no usable
// explanation.
const DefaultExplanation = "Analyzed by AI"

// Degraded returns the classification the engine falls back to when the
// classifier call fails or its output cannot be parsed: non-breaking, no
// identifiers.
func Degraded() Classification {
	return Classification{
		IsBreaking:         false,
		Explanation:        DefaultExplanation,
		ChangedIdentifiers: nil,
	}
}

// Outcome is a result-or-degraded value. Degraded=true means the classifier
// failed and Classification holds the fallback; callers that need to
// distinguish "classifier said non-breaking" from "classifier failed" check
// this flag, while the analyzer maps both to the same result shape.
type Outcome struct {
	Classification Classification
	Degraded       bool
	Err            error
}

// Classifier is the collaborator contract. Implementations receive the full
// file contents and bound what they send upstream themselves (see Truncate);
// they must never panic on malformed model output, degradation is reported
// through the Outcome.
type Classifier interface {
	Classify(ctx context.Context, oldContent, newContent string) Outcome
}

// Truncate bounds content sent to the classifier to limit request cost.
func Truncate(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	return content[:maxChars]
}
