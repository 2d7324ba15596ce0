package clause

import (
	"html"
	"strings"
)

// FieldClass is the CSS class carried by every rendered field element.
const FieldClass = "contract-field"

var attrEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;")

// fieldElement renders the editable slot for one field marker. Hints come from
// document text and are already HTML, so only attribute-breaking characters are escaped.
func fieldElement(id, hint, value string) string {
	var sb strings.Builder
	sb.WriteString(`<span class="`)
	sb.WriteString(FieldClass)
	sb.WriteString(`" contenteditable="true" data-field="`)
	sb.WriteString(attrEscaper.Replace(id))
	sb.WriteString(`" data-ph="`)
	sb.WriteString(attrEscaper.Replace(hint))
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(value))
	sb.WriteString(`</span>`)
	return sb.String()
}

// resolveConditionals performs the first pass: every COND token becomes the text
// selected by answers. Field markers and text are copied through untouched.
func resolveConditionals(tokens []Token, conditionals Conditionals, answers Answers) string {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Type {
		case TokenCond:
			sb.WriteString(conditionals[t.ID].Resolve(answers))
		default:
			sb.WriteString(t.Raw)
		}
	}
	return sb.String()
}

// expandFields performs the second pass over the whole first-pass output.
// Conditional markers that appear only in conditional text stay verbatim.
func expandFields(input string, prior FieldValues) (string, FieldValues) {
	surviving := FieldValues{}
	var sb strings.Builder
	for _, t := range TokenizeFields(input) {
		if t.Type != TokenField {
			sb.WriteString(t.Raw)
			continue
		}
		value := prior[t.ID]
		if value != "" {
			surviving[t.ID] = value
		}
		sb.WriteString(fieldElement(t.ID, t.Hint, value))
	}
	return sb.String(), surviving
}

// Render resolves conditional markers against answers and then turns every
// field marker, including those inside conditional text, into an empty editable
// element. It never fails: malformed markers are left as they are and unknown
// ids render as empty content.
func Render(templateHTML string, conditionals Conditionals, answers Answers) string {
	return defaultEngine().Render(templateHTML, conditionals, answers)
}

// RenderWithFields is Render with field persistence: values from prior are
// written into the matching field elements, and the returned store keeps only
// the values whose field is still present in the output.
func RenderWithFields(templateHTML string, conditionals Conditionals, answers Answers, prior FieldValues) (string, FieldValues) {
	return defaultEngine().RenderWithFields(templateHTML, conditionals, answers, prior)
}

// RenderQuestionnaire renders with the conditionals of q.
func RenderQuestionnaire(templateHTML string, q *Questionnaire, answers Answers) string {
	if q == nil {
		return Render(templateHTML, nil, answers)
	}
	return Render(templateHTML, q.Conditionals, answers)
}
