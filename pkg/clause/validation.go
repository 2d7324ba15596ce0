package clause

import (
	"fmt"
	"sort"
)

// Validate reports authoring problems in q relative to the document html.
// None of these stop rendering; they exist so an editor can show warnings.
// Pass an empty html to check the questionnaire alone.
func Validate(q *Questionnaire, html string) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, format string, args ...interface{}) {
		issues = append(issues, ValidationIssue{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	if q == nil {
		q = NewQuestionnaire()
	}

	sectionSeen := map[string]bool{}
	for i, s := range q.Sections {
		field := fmt.Sprintf("sections[%d]", i)
		if sectionSeen[s.ID] {
			add(field, "duplicate section id %q", s.ID)
		}
		sectionSeen[s.ID] = true

		if len(s.Options) == 0 {
			add(field, "section %q has no options", s.ID)
			continue
		}
		optionSeen := map[string]bool{}
		for _, opt := range s.Options {
			if optionSeen[opt.Value] {
				add(field, "duplicate option value %q in section %q", opt.Value, s.ID)
			}
			optionSeen[opt.Value] = true
		}
		if !s.HasOption(s.Default) {
			add(field, "default %q is not an option of section %q, first option is used", s.Default, s.ID)
		}
	}

	for _, id := range q.Conditionals.IDs() {
		c := q.Conditionals[id]
		field := "conditionals." + id
		if c == nil || c.SectionID == "" {
			add(field, "conditional %q is not bound to a section", id)
			continue
		}
		s := q.Section(c.SectionID)
		if s == nil {
			add(field, "conditional %q is bound to missing section %q", id, c.SectionID)
			continue
		}
		for _, key := range sortedKeys(c.Values) {
			if !s.HasOption(key) {
				add(field, "value for %q does not match any option of section %q", key, s.ID)
			}
		}
		for _, v := range s.OptionValues() {
			if _, ok := c.Values[v]; !ok {
				add(field, "no text for option %q, it renders empty", v)
			}
		}
	}

	if html == "" {
		return issues
	}

	referenced := map[string]bool{}
	for _, id := range DetectConditionalIDs(html) {
		referenced[id] = true
		if _, ok := q.Conditionals[id]; !ok {
			add("html", "marker {{COND:%s}} has no conditional entry, it renders empty", id)
		}
	}
	for _, id := range q.Conditionals.IDs() {
		if !referenced[id] {
			add("conditionals."+id, "conditional %q is not referenced by the document", id)
		}
	}
	for _, raw := range findMalformedMarkers(html) {
		add("html", "malformed marker %s is left as text", raw)
	}

	return issues
}

// ValidateErr wraps the issues of Validate in a *ValidationError, or returns nil.
func ValidateErr(q *Questionnaire, html string) error {
	issues := Validate(q, html)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
