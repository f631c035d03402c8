/*
Package resp builds and writes the standardized response envelope.

Every REST response, success or failure, has the same shape:

	{"success": true, "statusCode": 200, "message": "...", "data": ..., "timestamp": "..."}

so clients need a single parsing path regardless of outcome.
*/
package resp

import (
	"encoding/json"
	"net/http"
	"time"

	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/logx"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// now is the envelope clock. Tests replace it to pin timestamps.
var now = time.Now

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Timestamp  string `json:"timestamp"`
}

// Build wraps data into an Envelope stamped with the current time.
func Build(statusCode int, success bool, data any, message string) Envelope {
	return Envelope{
		Success:    success,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Timestamp:  now().UTC().Format(TimestampFormat),
	}
}

// RespondJSON sets the JSON headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "uri", r.RequestURI)

		fallback, _ := json.Marshal(Build(http.StatusInternalServerError, false, nil, "Error encoding JSON response"))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(fallback)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(body)
}

// RespondEnvelope builds an envelope and writes it with statusCode as the HTTP status.
func RespondEnvelope(w http.ResponseWriter, r *http.Request, statusCode int, success bool, data any, message string) {
	RespondJSON(w, r, statusCode, Build(statusCode, success, data, message))
}

// RespondSuccess writes a successful envelope (200 or 201 in practice).
func RespondSuccess(w http.ResponseWriter, r *http.Request, statusCode int, data any, message string) {
	RespondEnvelope(w, r, statusCode, true, data, message)
}

// RespondError writes a failure envelope for customErr with data set to null.
// A nil error is treated as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondEnvelope(w, r, customErr.Status, false, nil, customErr.Message)
}
