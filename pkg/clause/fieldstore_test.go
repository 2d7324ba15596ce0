package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValuesSet(t *testing.T) {
	fv := NewFieldValues(map[string]string{"a": "  Acme  ", "b": "   ", "c": ""})
	assert.Equal(t, FieldValues{"a": "Acme"}, fv)

	fv.Set("a", "")
	assert.Empty(t, fv)
}

func TestFieldValuesMergeAndRetain(t *testing.T) {
	base := FieldValues{"a": "1", "b": "2"}
	merged := base.Merge(FieldValues{"b": "3", "c": "4"})
	assert.Equal(t, FieldValues{"a": "1", "b": "3", "c": "4"}, merged)
	assert.Equal(t, FieldValues{"a": "1", "b": "2"}, base)

	assert.Equal(t, FieldValues{"c": "4"}, merged.Retain([]string{"c", "zzz"}))
	assert.Equal(t, []string{"a", "b", "c"}, merged.IDs())
}

func TestCollectFieldValues(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected FieldValues
	}{
		{
			name:     "empty fields are skipped",
			html:     `<p>` + emptyField("a", "x") + `</p>`,
			expected: FieldValues{},
		},
		{
			name:     "typed text is trimmed",
			html:     `<p><span class="contract-field" data-field="a" data-ph="x">  Acme LLC </span></p>`,
			expected: FieldValues{"a": "Acme LLC"},
		},
		{
			name:     "nested markup contributes its text",
			html:     `<span data-field="a" data-ph="x"><b>Acme</b> LLC</span>`,
			expected: FieldValues{"a": "Acme LLC"},
		},
		{
			name: "last non-empty occurrence wins",
			html: `<span data-field="a">first</span><span data-field="a">second</span>` +
				`<span data-field="a"> </span>`,
			expected: FieldValues{"a": "second"},
		},
		{
			name:     "entities are decoded",
			html:     `<span data-field="a">A &amp; B</span>`,
			expected: FieldValues{"a": "A & B"},
		},
		{
			name:     "empty id is ignored",
			html:     `<span data-field="">orphan</span>`,
			expected: FieldValues{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := CollectFieldValues(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestCollectThenRenderRoundTrip(t *testing.T) {
	template := "<p>{{FIELD:a:name}} {{FIELD:b:date}}</p>"
	out, _ := RenderWithFields(template, nil, nil, FieldValues{"a": "Ann & Co", "b": "1 May"})

	collected, err := CollectFieldValues(out)
	require.NoError(t, err)
	assert.Equal(t, FieldValues{"a": "Ann & Co", "b": "1 May"}, collected)
}
