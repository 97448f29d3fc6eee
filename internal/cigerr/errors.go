// Package cigerr defines stable error codes for all cig failure modes.
package cigerr

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidArgument indicates a malformed or missing input value.
	// This is the only code that surfaces from the analysis engine; every
	// other failure degrades to a lower-confidence result.
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// StoreIO indicates the graph document could not be read or written
	StoreIO ErrorCode = "STORE_IO"
	// ManifestInvalid indicates PROJECTS.toml is malformed or inconsistent
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// ProjectNotFound indicates the project id is not in the manifest
	ProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	// ClassifierUnavailable indicates the change classifier could not be constructed
	ClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	// RevisionUnavailable indicates file content could not be materialized at a revision
	RevisionUnavailable ErrorCode = "REVISION_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file
	EditFile FixActionType = "edit-file"
	// SetEnv suggests setting an environment variable
	SetEnv FixActionType = "set-env"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	File        string        `json:"file,omitempty"`
	Variable    string        `json:"variable,omitempty"`
}

// CigError represents a cig error with code, message, and suggestions
type CigError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new CigError
func New(code ErrorCode, message string, cause error) *CigError {
	return &CigError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes(code),
	}
}

// Error implements the error interface
func (e *CigError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CigError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CigError) WithDetails(details interface{}) *CigError {
	e.Details = details
	return e
}

// errorActions maps error codes to suggested fix actions
var errorActions = map[ErrorCode][]FixAction{
	ManifestInvalid: {
		{
			Type:        EditFile,
			File:        "PROJECTS.toml",
			Description: "Every project and repository entry needs a non-empty id and path",
		},
	},
	ProjectNotFound: {
		{
			Type:        RunCommand,
			Command:     "cig init",
			Safe:        true,
			Description: "Create a manifest with a sample project definition",
		},
	},
	ClassifierUnavailable: {
		{
			Type:        SetEnv,
			Variable:    "OPENAI_API_KEY",
			Description: "Set the classifier API key; analysis runs without semantic hits until then",
		},
	},
	StoreIO: {
		{
			Type:        RunCommand,
			Command:     "cig graph stats",
			Safe:        true,
			Description: "Check whether the graph store is reachable",
		},
	},
}

func suggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := errorActions[code]; ok {
		return fixes
	}
	return nil
}
