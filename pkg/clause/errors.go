package clause

// Rendering never fails; only the importer, questionnaire decoding and
// authoring edits report errors.

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedFormat is the cause of every import of a file that is not an OOXML word document.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	ErrSectionNotFound     = errors.New("section not found")
	ErrOptionNotFound      = errors.New("option not found")
	ErrConditionalNotFound = errors.New("conditional not found")
	ErrDuplicateOption     = errors.New("option value already exists")
	ErrDuplicateSection    = errors.New("section id already exists")
	ErrLastOption          = errors.New("section must keep at least one option")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
)

// DocumentError represents an error during document import
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// QuestionnaireError reports persisted questionnaire data that could not be decoded.
type QuestionnaireError struct {
	Input string
	Cause error
}

func (e *QuestionnaireError) Error() string {
	preview := e.Input
	if len(preview) > 40 {
		preview = preview[:40] + "..."
	}
	return fmt.Sprintf("questionnaire decode error near '%s': %v", preview, e.Cause)
}

func (e *QuestionnaireError) Unwrap() error {
	return e.Cause
}

// AuthoringError is returned by questionnaire edits that reference missing or conflicting entries.
type AuthoringError struct {
	Operation string
	ID        string
	Cause     error
}

func (e *AuthoringError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s '%s': %v", e.Operation, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *AuthoringError) Unwrap() error {
	return e.Cause
}

func authoringError(op, id string, cause error) error {
	return &AuthoringError{Operation: op, ID: id, Cause: cause}
}

// ValidationIssue represents a single authoring warning
type ValidationIssue struct {
	Field   string
	Message string
}

func (i ValidationIssue) String() string {
	return i.Field + ": " + i.Message
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}
	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

func (m *MultiError) Unwrap() []error {
	return m.errors
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contextParts := make([]string, 0, len(keys))
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}

func IsQuestionnaireError(err error) bool {
	var target *QuestionnaireError
	return errors.As(err, &target)
}

func IsAuthoringError(err error) bool {
	var target *AuthoringError
	return errors.As(err, &target)
}
