package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assignPayload struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
	Note    string `json:"note,omitempty" validate:"omitempty,max=5"`
}

func jsonRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
}

func TestDecodeJSONBody(t *testing.T) {
	id := uuid.New()

	var dest assignPayload
	require.NoError(t, DecodeJSONBody(jsonRequest(`{"agent_id":"`+id.String()+`"}`), &dest))
	assert.Equal(t, id.String(), dest.AgentID)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest assignPayload
	err := DecodeJSONBody(jsonRequest(`{"agent_id":"x","extra":1}`), &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	var dest assignPayload
	err := DecodeJSONBody(jsonRequest(`{"agent_id":"nope","note":"too long"}`), &dest)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{
		"agent_id": "must be a valid uuid",
		"note":     "must be at most 5",
	}, typed.Details())
}

func TestDecodeJSONBodyRejectsTrailingObjects(t *testing.T) {
	var dest assignPayload
	err := DecodeJSONBody(jsonRequest(`{"agent_id":"`+uuid.NewString()+`"}{}`), &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemId", id.String())

	got, err := ParseUUIDParam(r, "itemId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemId", "abc"), "itemId")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = ParseUUIDParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemId")
	require.Error(t, err)
}

func TestRequireParam(t *testing.T) {
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "batch", " 1700000000000 ")
	got, err := RequireParam(r, "batch")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", got)

	_, err = RequireParam(withParam(httptest.NewRequest(http.MethodGet, "/", nil), "batch", "  "), "batch")
	require.Error(t, err)
}

func TestDecodeJSONBodyRejectsNonJSONContentType(t *testing.T) {
	req := jsonRequest(`{"agent_id":"x"}`)
	req.Header.Set("Content-Type", "text/plain")

	var dest assignPayload
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	req = jsonRequest(`{"agent_id":"` + uuid.NewString() + `"}`)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	require.NoError(t, DecodeJSONBody(req, &dest))
}

func TestDecodeJSONBodyEmptyAndOversized(t *testing.T) {
	var dest assignPayload
	err := DecodeJSONBody(jsonRequest(""), &dest)
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Message(), "required")

	huge := `{"agent_id":"` + strings.Repeat("a", MaxJSONBodyBytes+10) + `"}`
	err = DecodeJSONBody(jsonRequest(huge), &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeTooLarge, pkgerrors.CodeOf(err))
}
