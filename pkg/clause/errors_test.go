package clause

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentError(t *testing.T) {
	cause := errors.New("boom")
	err := NewDocumentError("parse", "word/document.xml", cause)

	assert.Equal(t, "document error during parse of 'word/document.xml': boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsDocumentError(err))
	assert.Equal(t, "document error during import", (&DocumentError{Operation: "import"}).Error())
}

func TestQuestionnaireErrorPreview(t *testing.T) {
	err := &QuestionnaireError{Input: "0123456789012345678901234567890123456789tail", Cause: errors.New("bad")}
	assert.Equal(t, "questionnaire decode error near '0123456789012345678901234567890123456789...': bad", err.Error())
}

func TestAuthoringError(t *testing.T) {
	err := authoringError("remove option", "a", ErrLastOption)
	assert.Equal(t, "remove option 'a': section must keep at least one option", err.Error())
	assert.ErrorIs(t, err, ErrLastOption)
	assert.False(t, IsDocumentError(err))
}

func TestMultiError(t *testing.T) {
	m := NewMultiError()
	assert.NoError(t, m.Err())

	first := errors.New("first")
	m.Add(nil)
	m.Add(first)
	assert.Equal(t, first, m.Err())

	m.Add(ErrSectionNotFound)
	assert.Equal(t, 2, m.Len())
	assert.ErrorIs(t, m.Err(), ErrSectionNotFound)
	assert.Contains(t, m.Error(), "2 errors occurred")
}

func TestContextError(t *testing.T) {
	assert.NoError(t, WithContext(nil, "op", nil))

	err := WithContext(ErrOptionNotFound, "render", map[string]interface{}{"b": 2, "a": 1})
	assert.Equal(t, "render [a=1, b=2]: option not found", err.Error())
	assert.ErrorIs(t, err, ErrOptionNotFound)
}
