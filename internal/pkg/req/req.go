/*
Package req provides helpers for parsing request bodies and parameters.

Failures are reported as *errs.CustomError so handlers can pass them straight to resp.RespondError.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"apitutor/internal/pkg/errs"
)

// MaxJSONBodySize is the largest JSON request body accepted (1 MB).
const MaxJSONBodySize int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
// The body must be application/json, a single JSON value and no larger than MaxJSONBodySize.
// Fields dst does not declare are ignored.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return bindJSON(w, r, dst, false)
}

// BindOptionalJSON is BindJSON for bodies that may be omitted: an empty body leaves dst
// untouched and is accepted whatever its Content-Type.
func BindOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return bindJSON(w, r, dst, true)
}

func bindJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		// a chunked body of unknown length may still turn out to be empty
		if optional && r.ContentLength < 0 && contentType == "" {
			return bindEmptyOrFail(w, r)
		}
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}

		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// bindEmptyOrFail accepts an untyped body only when it turns out to be empty.
func bindEmptyOrFail(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	var first [1]byte
	n, _ := io.ReadFull(http.MaxBytesReader(w, r.Body, MaxJSONBodySize), first[:])
	if n == 0 {
		return nil
	}
	return errs.NewError(errs.ErrUnsupportedMediaType)
}

// QueryInt reads a positive integer query parameter, returning def when the parameter is absent.
// Present but non-numeric or non-positive values are rejected as ErrInvalidParams.
func QueryInt(r *http.Request, key string, def int) (int, *errs.CustomError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	return n, nil
}
