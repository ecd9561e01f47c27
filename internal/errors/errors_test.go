package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"autochart/domain/core"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := NotFound("chart")
	wrapped := Wrap(inner, "loading dashboard")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, "loading dashboard: chart not found", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWrapPlainError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	err := Wrapf(fmt.Errorf("boom"), "step %d", 2)

	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "step 2: boom", err.Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad column"))

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", InvalidInput("x"), http.StatusBadRequest},
		{"validation sentinel", core.NewValidationError("column", "required"), http.StatusBadRequest},
		{"missing axis", fmt.Errorf("build: %w", core.ErrMissingAxis), http.StatusBadRequest},
		{"not found", core.ErrChartNotFound, http.StatusNotFound},
		{"too large", core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", Wrap(core.ErrUnsupportedFormat, "reading upload"), http.StatusUnsupportedMediaType},
		{"no data", core.ErrNoData, http.StatusBadRequest},
		{"database", DatabaseError("save charts", fmt.Errorf("conn reset")), http.StatusInternalServerError},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
