package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponseBytes(t *testing.T) {
	rec := httptest.NewRecorder()

	testJson := `{"key":"val"}`
	WriteResponseBytes(rec, ContentType.JSON, []byte(testJson), http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ContentType.JSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, testJson, rec.Body.String())
}

func TestWriteJSONResponseOK(t *testing.T) {
	rec := httptest.NewRecorder()

	testJson := `{"key":"val"}`
	WriteJSONResponseOK(rec, testJson)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType.JSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, testJson, rec.Body.String())
}

func TestWriteTextResponseOK(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteTextResponseOK(rec, "all fine")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType.Text, rec.Header().Get("Content-Type"))
	assert.Equal(t, "all fine", rec.Body.String())
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSONError(rec, "programme not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentType.JSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"programme not found"}`, rec.Body.String())
}
