package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitutor/internal/pkg/errs"
)

type payload struct {
	Name string `json:"name"`
}

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	return r
}

func TestBindJSON(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"valid", `{"name":"A"}`, 0},
		{"malformed", `{"name":`, errs.ErrInvalidJSONFormat},
		{"empty", ``, errs.ErrInvalidJSONFormat},
		{"unknown field ignored", `{"name":"A","x":1}`, 0},
		{"trailing value", `{"name":"A"} {"name":"B"}`, errs.ErrExtraContentInBody},
		{"too large", `{"name":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`, errs.ErrRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst payload
			err := BindJSON(httptest.NewRecorder(), jsonRequest(tc.body), &dst)

			if tc.code == 0 {
				require.Nil(t, err)
				assert.Equal(t, "A", dst.Name)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tc.code, err.Code)
		})
	}
}

func TestBindJSON_RequiresJSONContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"A"}`))
	r.Header.Set("Content-Type", "text/plain")

	err := BindJSON(httptest.NewRecorder(), r, &payload{})
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrUnsupportedMediaType, err.Code)
}

func TestQueryInt(t *testing.T) {
	get := func(query string) (int, *errs.CustomError) {
		return QueryInt(httptest.NewRequest(http.MethodGet, "/?"+query, nil), "page", 7)
	}

	n, err := get("")
	require.Nil(t, err)
	assert.Equal(t, 7, n)

	n, err = get("page=3")
	require.Nil(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"page=0", "page=-2", "page=abc", "page=1.5"} {
		_, err = get(bad)
		require.NotNil(t, err, bad)
		assert.Equal(t, errs.ErrInvalidParams, err.Code)
	}
}

func TestBindOptionalJSON(t *testing.T) {
	t.Run("empty body without content type", func(t *testing.T) {
		dst := payload{Name: "kept"}
		r := httptest.NewRequest(http.MethodPatch, "/", nil)

		require.Nil(t, BindOptionalJSON(httptest.NewRecorder(), r, &dst))
		assert.Equal(t, "kept", dst.Name)
	})

	t.Run("empty json body", func(t *testing.T) {
		dst := payload{Name: "kept"}

		require.Nil(t, BindOptionalJSON(httptest.NewRecorder(), jsonRequest(""), &dst))
		assert.Equal(t, "kept", dst.Name)
	})

	t.Run("body present is bound", func(t *testing.T) {
		var dst payload

		require.Nil(t, BindOptionalJSON(httptest.NewRecorder(), jsonRequest(`{"name":"A","extra":true}`), &dst))
		assert.Equal(t, "A", dst.Name)
	})

	t.Run("body present still needs json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`name=A`))
		r.Header.Set("Content-Type", "text/plain")

		err := BindOptionalJSON(httptest.NewRecorder(), r, &payload{})
		require.NotNil(t, err)
		assert.Equal(t, errs.ErrUnsupportedMediaType, err.Code)
	})
}
