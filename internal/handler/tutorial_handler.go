/*
Package handler provides HTTP handler functions for the introductory tutorial steps.

These routes demonstrate a plain GET and a POST returning 201 without touching the user store.
*/
package handler

import (
	"net/http"
	"time"

	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/req"
	"apitutor/internal/pkg/resp"
)

// HandleHello answers the first tutorial step.
func HandleHello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"message": "Step 1: GET request succeeded!",
			"concept": "GET is used to read data from the server without changing it.",
		}
		resp.RespondSuccess(w, r, http.StatusOK, data, "Hello from the tutorial API.")
	}
}

type CreateDataInput struct {
	Name string `json:"name"`
	// Age is a pointer so a missing field is distinguishable from zero.
	Age *int `json:"age"`
}

// CreatedData is echoed back by HandleCreateData. Nothing is stored.
type CreatedData struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	CreatedAt string `json:"createdAt"`
}

// HandleCreateData answers the second tutorial step: validate a body and reply 201.
func HandleCreateData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateDataInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name == "" || input.Age == nil || *input.Age == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		data := CreatedData{
			ID:        1,
			Name:      input.Name,
			Age:       *input.Age,
			CreatedAt: time.Now().UTC().Format(resp.TimestampFormat),
		}
		resp.RespondSuccess(w, r, http.StatusCreated, data, "Step 2: POST request succeeded!")
	}
}
