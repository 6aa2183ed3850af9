package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1007
	ErrServiceUnavail = 1008

	// Configuration errors (2000-2999)
	ErrConfigInvalid       = 2000
	ErrConfigMissingKey    = 2001
	ErrEnvironmentNotReady = 2002

	// Ingestion errors (3000-3999)
	ErrIngestDirNotFound   = 3000
	ErrIngestNoFiles       = 3001
	ErrIngestReadFailed    = 3002
	ErrIngestMalformedJSON = 3003
	ErrIngestNoChunks      = 3004

	// Retrieval errors (4000-4999)
	ErrQuestionMissing  = 4000
	ErrEmbeddingFailed  = 4001
	ErrVectorDBFailed   = 4002
	ErrRetrievalFailed  = 4003
	ErrCollectionAbsent = 4004

	// Generation errors (5000-5999)
	ErrGenerationFailed = 5000
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail: {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrConfigInvalid:       {ErrConfigInvalid, http.StatusInternalServerError, "Invalid configuration"},
	ErrConfigMissingKey:    {ErrConfigMissingKey, http.StatusInternalServerError, "Missing required configuration"},
	ErrEnvironmentNotReady: {ErrEnvironmentNotReady, http.StatusServiceUnavailable, "Environment is not ready"},

	ErrIngestDirNotFound:   {ErrIngestDirNotFound, http.StatusNotFound, "Data directory not found"},
	ErrIngestNoFiles:       {ErrIngestNoFiles, http.StatusNotFound, "No JSON files found"},
	ErrIngestReadFailed:    {ErrIngestReadFailed, http.StatusInternalServerError, "Failed to read source file"},
	ErrIngestMalformedJSON: {ErrIngestMalformedJSON, http.StatusBadRequest, "Malformed university record"},
	ErrIngestNoChunks:      {ErrIngestNoChunks, http.StatusUnprocessableEntity, "No chunks produced"},

	ErrQuestionMissing:  {ErrQuestionMissing, http.StatusBadRequest, "No question provided"},
	ErrEmbeddingFailed:  {ErrEmbeddingFailed, http.StatusInternalServerError, "Embedding generation failed"},
	ErrVectorDBFailed:   {ErrVectorDBFailed, http.StatusInternalServerError, "Vector database operation failed"},
	ErrRetrievalFailed:  {ErrRetrievalFailed, http.StatusInternalServerError, "Document retrieval failed"},
	ErrCollectionAbsent: {ErrCollectionAbsent, http.StatusServiceUnavailable, "Collection does not exist"},

	ErrGenerationFailed: {ErrGenerationFailed, http.StatusBadGateway, "Answer generation failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
