package errs

import "net/http"

// errorMap holds the template for every application error code.
// A zero Status means the error is only used on the realtime channel and defaults to 400 over HTTP.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrKeywordRequired:       {Code: ErrKeywordRequired, Message: "A search keyword is required.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrRouteNotFound:         {Code: ErrRouteNotFound, Message: "Route not found.", Status: http.StatusNotFound},
	ErrMethodNotAllowed:      {Code: ErrMethodNotAllowed, Message: "Method not allowed.", Status: http.StatusMethodNotAllowed},

	// 2xxx
	ErrUserNotFound:     {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrRoomNameInvalid:  {Code: ErrRoomNameInvalid, Message: "Room name must be 1-%d bytes."},
	ErrMessageTooLong:   {Code: ErrMessageTooLong, Message: "Message is too long."},
	ErrUnsupportedEvent: {Code: ErrUnsupportedEvent, Message: "Unsupported event."},

	// 5xxx
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
