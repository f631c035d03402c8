/*
Package handler provides HTTP handler functions for the user resource.

Each handler validates its input, delegates to the user store and writes exactly one response
envelope. Store failures already carry their HTTP status, so they are passed through unchanged.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"apitutor/internal/app/user"
	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/req"
	"apitutor/internal/pkg/resp"
)

const (
	// DefaultSearchLimit is the page size used when the limit parameter is absent.
	DefaultSearchLimit = 10

	// MaxSearchLimit caps the page size a client may request.
	MaxSearchLimit = 100
)

type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SearchQuery echoes the parsed search parameters back to the client.
type SearchQuery struct {
	Keyword string `json:"keyword"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}

// SearchResult is the data of a search response. Count is the size of this page, Total the
// number of matches across all pages.
type SearchResult struct {
	Query   SearchQuery `json:"query"`
	Results []user.User `json:"results"`
	Count   int         `json:"count"`
	Total   int         `json:"total"`
}

// HandleListUsers returns every user in insertion order.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, http.StatusOK, deps.Store.List(), "Users retrieved successfully.")
	}
}

// HandleGetUser returns a single user by id.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := userIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Store.Get(id)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, http.StatusOK, u, "User retrieved successfully.")
	}
}

// HandleSearchUsers filters users by a case-sensitive name keyword and pages the matches.
func HandleSearchUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		if keyword == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrKeywordRequired))
			return
		}

		page, customErr := req.QueryInt(r, "page", 1)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		limit, customErr := req.QueryInt(r, "limit", DefaultSearchLimit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if limit > MaxSearchLimit {
			limit = MaxSearchLimit
		}

		matches := deps.Store.Search(keyword)
		results := paginate(matches, page, limit)

		data := SearchResult{
			Query:   SearchQuery{Keyword: keyword, Page: page, Limit: limit},
			Results: results,
			Count:   len(results),
			Total:   len(matches),
		}
		resp.RespondSuccess(w, r, http.StatusOK, data, "Search completed.")
	}
}

// HandleCreateUser appends a user and replies 201.
func HandleCreateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input UserInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Store.Create(input.Name, input.Email)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		logx.Info("User created", "user_id", u.ID)
		resp.RespondSuccess(w, r, http.StatusCreated, u, "User created successfully.")
	}
}

// HandleReplaceUser overwrites every field of a user. Both fields are required.
func HandleReplaceUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := userIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input UserInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Store.Replace(id, input.Name, input.Email)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, http.StatusOK, u, "User replaced successfully.")
	}
}

// HandlePatchUser updates only the supplied fields of a user. An empty body changes nothing.
func HandlePatchUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := userIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// An absent record is reported before anything about the body.
		if _, customErr := deps.Store.Get(id); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var patch user.Patch
		if customErr := req.BindOptionalJSON(w, r, &patch); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Store.Patch(id, patch)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, http.StatusOK, u, "User updated successfully.")
	}
}

// HandleDeleteUser removes a user and returns the removed record.
func HandleDeleteUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := userIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, customErr := deps.Store.Remove(id)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		logx.Info("User deleted", "user_id", u.ID)
		resp.RespondSuccess(w, r, http.StatusOK, u, "User deleted successfully.")
	}
}

// userIDParam parses the {id} route parameter. The route pattern only admits digits, so a parse
// failure means the number overflowed, which can never match a stored id.
func userIDParam(r *http.Request) (int, *errs.CustomError) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, errs.NewError(errs.ErrUserNotFound)
	}
	return id, nil
}

// paginate returns the 1-based page of items. Pages past the end are empty, never nil.
func paginate(items []user.User, page, limit int) []user.User {
	if page > len(items)/limit+1 {
		return []user.User{}
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []user.User{}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
