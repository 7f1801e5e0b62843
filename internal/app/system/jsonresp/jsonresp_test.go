package jsonresp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/stretchr/testify/assert"
)

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonresp.Error(rec, http.StatusConflict, "conflict", "version mismatch", map[string]int{"current": 3})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"conflict","message":"version mismatch","details":{"current":3}}}`, rec.Body.String())
}

func TestWrite_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonresp.Write(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
