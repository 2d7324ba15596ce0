package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benjaminschreck/go-clause/internal/service"
	"github.com/benjaminschreck/go-clause/internal/store"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: fmt.Errorf("%w: x", store.ErrNotFound), expected: http.StatusNotFound},
		{name: "unsupported", err: clause.NewDocumentError("import", "DOCX", fmt.Errorf("%w: pdf", clause.ErrUnsupportedFormat)), expected: http.StatusUnsupportedMediaType},
		{name: "corrupt document", err: clause.NewDocumentError("parse", "word/document.xml", errors.New("eof")), expected: http.StatusBadRequest},
		{name: "invalid input", err: fmt.Errorf("%w: bad", service.ErrInvalidInput), expected: http.StatusBadRequest},
		{name: "questionnaire", err: &clause.QuestionnaireError{Cause: errors.New("x")}, expected: http.StatusBadRequest},
		{name: "authoring", err: &clause.AuthoringError{Operation: "add option", Cause: clause.ErrDuplicateOption}, expected: http.StatusBadRequest},
		{name: "other", err: errors.New("mongo down"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestRawQuestionnaire(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		got, err := rawQuestionnaire([]byte(raw))
		assert.NoError(t, err)
		assert.Equal(t, "", got)
	}

	got, err := rawQuestionnaire([]byte(`"{\"sections\":[]}"`))
	assert.NoError(t, err)
	assert.Equal(t, `{"sections":[]}`, got)

	got, err = rawQuestionnaire([]byte(` {"sections":[]} `))
	assert.NoError(t, err)
	assert.Equal(t, `{"sections":[]}`, got)
}
