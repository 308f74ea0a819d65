// Package errors provides structured error handling for lexstore.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index and corpus IO errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Document store contract errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates index and corpus I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
	// CategoryStore indicates document store contract errors.
	CategoryStore Category = "STORE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index and corpus IO errors (200-299)
	ErrCodeIndexNotFound  = "ERR_201_INDEX_NOT_FOUND"
	ErrCodeIndexCorrupt   = "ERR_202_INDEX_CORRUPT"
	ErrCodeCorpusNotFound = "ERR_203_CORPUS_NOT_FOUND"
	ErrCodeBuildLocked    = "ERR_204_BUILD_LOCKED"
	ErrCodeIndexClosed    = "ERR_205_INDEX_CLOSED"

	// Validation errors (400-499)
	ErrCodeInvalidInput    = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty      = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidTopK     = "ERR_403_INVALID_TOP_K"
	ErrCodeInvalidFilter   = "ERR_404_INVALID_FILTER"
	ErrCodeInvalidLanguage = "ERR_405_INVALID_LANGUAGE"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeBuildFailed  = "ERR_503_BUILD_FAILED"

	// Document store contract errors (600-699)
	ErrCodeImmutableIndex    = "ERR_601_IMMUTABLE_INDEX"
	ErrCodeNotImplemented    = "ERR_602_NOT_IMPLEMENTED"
	ErrCodeDuplicateDocument = "ERR_603_DUPLICATE_DOCUMENT"
	ErrCodeMissingDocument   = "ERR_604_MISSING_DOCUMENT"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	case '6':
		return CategoryStore
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexCorrupt:
		return SeverityFatal
	case ErrCodeBuildLocked:
		return SeverityWarning
	}
	return SeverityError
}
