package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Title  string   `json:"title" validate:"required,max=10"`
	Type   string   `json:"type" validate:"required,oneof=lost found"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Images []string `json:"images" validate:"max=2"`
	Legacy string   `validate:"omitempty,min=3"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Title: "Wallet", Type: "lost", Email: "a@b.com"}
	assert.NoError(t, Validate(s))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	err := Validate(testStruct{Type: "lost"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["title"])
}

func TestValidate_FallsBackToFieldName(t *testing.T) {
	err := Validate(testStruct{Title: "x", Type: "lost", Legacy: "ab"})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Legacy")
}

func TestValidationError_MessagesInFieldOrder(t *testing.T) {
	err := Validate(testStruct{Title: strings.Repeat("x", 11), Type: "stolen", Images: []string{"a", "b", "c"}})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	assert.Equal(t, []string{
		"title cannot exceed 10 characters",
		"type must be one of: lost, found",
		"images must contain at most 2 entries",
	}, valErr.Messages())
	assert.Equal(t, strings.Join(valErr.Messages(), ", "), valErr.Error())
}

func TestValidate_InvalidEmail(t *testing.T) {
	err := Validate(testStruct{Title: "x", Type: "found", Email: "nope"})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"Keys","ownerId":"someone-else"}`))
	var dst struct {
		Title string `json:"title"`
	}
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "Keys", dst.Title)
}

func TestDecode_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":`))
	var dst map[string]any
	err := Decode(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Bag"}`))
	var dst testStruct
	err := DecodeAndValidate(req, &dst)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "type")
}
