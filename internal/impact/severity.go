package impact

// ClassifySeverity maps (isBreaking, affectedCount) to a severity, evaluated
// top to bottom, first match wins:
//
//	breaking and count > 5   -> CRITICAL
//	breaking and count > 0   -> HIGH
//	count > 10               -> HIGH
//	count > 5                -> MEDIUM
//	otherwise                -> LOW
//
// A breaking change with zero affected files falls through every row to LOW.
//
// Because AnalyzeFileChange empties the affected list for non-breaking
// changes before computing severity, the two non-breaking rows are
// unreachable through the analyzer; they are kept so callers that bypass the
// short-circuit (or a future policy that surfaces widely-used non-breaking
// changes at lower severity) get the documented table. Whether that policy
// should change is an open product question; current behavior is preserved.
func ClassifySeverity(isBreaking bool, affectedCount int) Severity {
	switch {
	case isBreaking && affectedCount > 5:
		return SeverityCritical
	case isBreaking && affectedCount > 0:
		return SeverityHigh
	case affectedCount > 10:
		return SeverityHigh
	case affectedCount > 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
