/*
Package errs provides the application error type and the error code constants.

Codes identify a failure both in logs and in the response envelope, so a client has a single
value to branch on regardless of the HTTP status.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that a required field is missing or a parameter is malformed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not application/json.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the target shape.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrKeywordRequired indicates that a search request did not carry a keyword.
	ErrKeywordRequired = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the client IP exceeded its request budget.
	ErrRateLimitExceeded = 1007

	// ErrRouteNotFound indicates that no route matches the request path.
	ErrRouteNotFound = 1008

	// ErrMethodNotAllowed indicates that the path exists but not for this HTTP method.
	ErrMethodNotAllowed = 1009
)

// 2xxx: User and Realtime Errors
const (
	// ErrUserNotFound indicates that no user record has the requested id.
	ErrUserNotFound = 2001

	// ErrRoomNameInvalid indicates that a realtime room name is empty or too long.
	ErrRoomNameInvalid = 2101

	// ErrMessageTooLong indicates that a realtime message exceeded the content limit.
	ErrMessageTooLong = 2102

	// ErrUnsupportedEvent indicates that a realtime frame was malformed or named an unknown event.
	ErrUnsupportedEvent = 2103
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server fault.
	ErrUnknown = 5000
)
