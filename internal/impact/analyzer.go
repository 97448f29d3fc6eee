package impact

import (
	"context"
	"strings"
	"time"

	"cig/internal/cigerr"
	"cig/internal/classify"
	"cig/internal/graph"
	"cig/internal/logging"
	"cig/internal/paths"
	"cig/internal/scan"
)

// NotInGraphExplanation is returned when the changed file has no node. That
// is the correct answer when the indexer has not captured the file yet, not
// an error.
const NotInGraphExplanation = "File not found in dependency graph"

// noDiffExplanation is used when old or new content was unavailable and the
// classifier step was skipped.
const noDiffExplanation = "No content available for change classification"

// Analyzer runs the full analysis pipeline against one project's graph
// store. The classifier and scanner are optional; without them the analysis
// degrades to structural hits with a non-breaking classification.
type Analyzer struct {
	store      *graph.Store
	walker     *graph.ReverseDependencyWalker
	scanner    *scan.UsageScanner
	classifier classify.Classifier
	logger     *logging.Logger
}

// NewAnalyzer creates an Analyzer. scanner and classifier may be nil.
func NewAnalyzer(store *graph.Store, scanner *scan.UsageScanner, classifier classify.Classifier, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		store:      store,
		walker:     graph.NewReverseDependencyWalker(),
		scanner:    scanner,
		classifier: classifier,
		logger:     logger,
	}
}

// AnalyzeFileChange is the engine's sole public operation. oldContent and
// newContent may be empty; the classifier runs only when both are present.
// Every failure past input validation degrades to a lower-confidence result
// instead of an error.
func (a *Analyzer) AnalyzeFileChange(ctx context.Context, projectID, repoID, filePath, oldContent, newContent string) (*ImpactResult, error) {
	if projectID == "" || repoID == "" || filePath == "" {
		return nil, cigerr.New(cigerr.InvalidArgument,
			"projectId, repoId and filePath are required", nil)
	}

	snapshot := a.store.Snapshot()

	nodeID, found := resolveNode(snapshot, repoID, filePath)
	if !found {
		a.logger.Info("Changed file not in dependency graph", map[string]interface{}{
			"projectId": projectID,
			"repoId":    repoID,
			"filePath":  filePath,
		})
		return &ImpactResult{
			ProjectID:     projectID,
			ChangedFile:   filePath,
			ChangedRepo:   repoID,
			AffectedFiles: []AffectedFile{},
			IsBreaking:    false,
			Severity:      SeverityLow,
			Explanation:   NotInGraphExplanation,
			Timestamp:     time.Now().UTC(),
		}, nil
	}

	structural := a.walker.Walk(snapshot, nodeID, repoID)

	classification := classify.Classification{Explanation: noDiffExplanation}
	hasDiff := oldContent != "" && newContent != ""
	if hasDiff && a.classifier != nil {
		outcome := a.classifier.Classify(ctx, oldContent, newContent)
		if outcome.Degraded {
			// Degraded classification is never surfaced as a failure; the
			// analysis proceeds as non-breaking with no semantic hits.
			a.logger.Warn("Proceeding with degraded classification", map[string]interface{}{
				"projectId": projectID,
				"filePath":  filePath,
				"error":     errString(outcome.Err),
			})
		}
		classification = outcome.Classification
	}

	var semantic []scan.Hit
	if len(classification.ChangedIdentifiers) > 0 && a.scanner != nil {
		semantic = a.scanner.Scan(snapshot, repoID, classification.ChangedIdentifiers)
	}

	affected := mergeHits(structural, semantic)

	severity := SeverityLow
	if classification.IsBreaking {
		severity = ClassifySeverity(true, len(affected))
	} else {
		// Non-breaking short-circuit: the system flags breaking
		// propagation; non-breaking changes report no downstream action.
		affected = []AffectedFile{}
	}

	result := &ImpactResult{
		ProjectID:     projectID,
		ChangedFile:   filePath,
		ChangedRepo:   repoID,
		AffectedFiles: affected,
		IsBreaking:    classification.IsBreaking,
		Severity:      severity,
		Explanation:   classification.Explanation,
		Timestamp:     time.Now().UTC(),
	}
	if hasDiff {
		result.Diff = &Diff{Old: oldContent, New: newContent}
	}

	a.logger.Info("Impact analysis complete", map[string]interface{}{
		"projectId":  projectID,
		"filePath":   filePath,
		"isBreaking": result.IsBreaking,
		"severity":   string(result.Severity),
		"affected":   len(result.AffectedFiles),
	})

	return result, nil
}

// resolveNode tries the path normalized to forward slashes, the path exactly
// as given, then with backslashes; the first id present in the graph wins.
func resolveNode(g *graph.Graph, repoID, filePath string) (string, bool) {
	for _, candidate := range paths.Candidates(filePath) {
		id := paths.NodeID(repoID, candidate)
		if g.HasNode(id) {
			return id, true
		}
	}
	return "", false
}

// mergeHits combines structural and semantic hits, structural first, and
// deduplicates by case-insensitive slash-normalized (repoId, filePath).
// The first occurrence wins even when a later duplicate carries a different
// reason.
func mergeHits(structural []graph.Hit, semantic []scan.Hit) []AffectedFile {
	merged := make([]AffectedFile, 0, len(structural)+len(semantic))
	seen := make(map[string]bool)

	add := func(f AffectedFile) {
		key := dedupeKey(f.RepoID, f.FilePath)
		if seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, f)
	}

	for _, h := range structural {
		add(AffectedFile{RepoID: h.RepoID, FilePath: h.FilePath, Reason: h.Reason})
	}
	for _, h := range semantic {
		add(AffectedFile{RepoID: h.RepoID, FilePath: h.FilePath, Reason: h.Reason, Context: h.Context})
	}

	return merged
}

func dedupeKey(repoID, filePath string) string {
	return strings.ToLower(repoID) + "|" + strings.ToLower(paths.NormalizeSlashes(filePath))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
