package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"n": 1}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())

	w = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		code     int
		errType  string
		exposeIt bool
	}{
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "validation_error", true},
		{fmt.Errorf("update expense: %w", core.ErrExpenseNotFound), http.StatusNotFound, "not_found_error", true},
		{core.ErrInvalidCredentials, http.StatusUnauthorized, "auth_error", true},
		{core.ErrEmailTaken, http.StatusConflict, "conflict_error", true},
		{core.StoreError("list expenses", errors.New("disk I/O error")), http.StatusInternalServerError, "database_error", false},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error", false},
	}
	for _, tt := range tests {
		t.Run(tt.errType, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.code, w.Code)
			body := decode[ErrorBody](t, w)
			assert.Equal(t, tt.errType, body.Type)
			if tt.exposeIt {
				assert.Equal(t, tt.err.Error(), body.Message)
			} else {
				assert.Equal(t, "Internal server error", body.Message)
			}
		})
	}
}
