package clause

import (
	"strconv"
	"strings"
)

// FieldRef is one distinct field found in a document.
type FieldRef struct {
	ID   string `json:"id"`
	Hint string `json:"hint"`
}

// DetectConditionalIDs returns the distinct conditional ids referenced in html,
// in order of first appearance.
func DetectConditionalIDs(html string) []string {
	ids := []string{}
	seen := map[string]bool{}
	for _, t := range TokenizeConditionals(html) {
		if t.Type == TokenCond && !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// DetectFields returns the distinct fields referenced in html with the first
// hint seen for each, in order of first appearance.
func DetectFields(html string) []FieldRef {
	refs := []FieldRef{}
	seen := map[string]bool{}
	for _, t := range Tokenize(html) {
		if t.Type == TokenField && !seen[t.ID] {
			seen[t.ID] = true
			refs = append(refs, FieldRef{ID: t.ID, Hint: t.Hint})
		}
	}
	return refs
}

// newConditionalFor creates an entry bound to section, or an unbound entry when section is nil.
func newConditionalFor(id string, section *Section) *Conditional {
	c := &Conditional{ID: id, Values: map[string]string{}}
	if section != nil {
		c.SectionID = section.ID
		for _, v := range section.OptionValues() {
			c.Values[v] = ""
		}
	}
	return c
}

// ReconcileConditionals returns a copy of existing extended with an entry for
// every conditional id html references but existing lacks. New entries are
// bound to the first section, if any. Existing entries are never changed or
// removed, even when html no longer references them.
func ReconcileConditionals(html string, existing Conditionals, sections []Section) Conditionals {
	out := existing.Clone()
	var first *Section
	if len(sections) > 0 {
		first = &sections[0]
	}
	for _, id := range DetectConditionalIDs(html) {
		if _, ok := out[id]; ok {
			continue
		}
		out[id] = newConditionalFor(id, first)
	}
	return out
}

// SyncConditionals reconciles q with html in place and returns the added ids.
func (q *Questionnaire) SyncConditionals(html string) []string {
	if q.Conditionals == nil {
		q.Conditionals = Conditionals{}
	}
	added := []string{}
	for _, id := range DetectConditionalIDs(html) {
		if _, ok := q.Conditionals[id]; !ok {
			added = append(added, id)
		}
	}
	if len(added) > 0 {
		q.Conditionals = ReconcileConditionals(html, q.Conditionals, q.Sections)
	}
	return added
}

// boundTo returns the conditionals bound to sectionID.
func (q *Questionnaire) boundTo(sectionID string) []*Conditional {
	var out []*Conditional
	for _, id := range q.Conditionals.IDs() {
		if c := q.Conditionals[id]; c != nil && c.SectionID == sectionID {
			out = append(out, c)
		}
	}
	return out
}

func (q *Questionnaire) nextSectionID() string {
	for n := len(q.Sections) + 1; ; n++ {
		id := "section" + strconv.Itoa(n)
		if q.Section(id) == nil {
			return id
		}
	}
}

// AddSection appends a section seeded with two options and returns its id.
func (q *Questionnaire) AddSection(title string) string {
	id := q.nextSectionID()
	if strings.TrimSpace(title) == "" {
		title = "Section " + strings.TrimPrefix(id, "section")
	}
	q.Sections = append(q.Sections, Section{
		ID:      id,
		Title:   title,
		Type:    SectionTypeRadio,
		Default: "option1",
		Options: []Option{
			{Value: "option1", Label: "Option 1"},
			{Value: "option2", Label: "Option 2"},
		},
	})
	return id
}

// InsertSection adds a fully specified section. The id must be unused and the
// section must carry at least one option.
func (q *Questionnaire) InsertSection(s Section) error {
	if !ValidCondID(s.ID) {
		return authoringError("insert section", s.ID, ErrInvalidIdentifier)
	}
	if q.Section(s.ID) != nil {
		return authoringError("insert section", s.ID, ErrDuplicateSection)
	}
	if len(s.Options) == 0 {
		return authoringError("insert section", s.ID, ErrLastOption)
	}
	seen := map[string]bool{}
	for _, opt := range s.Options {
		if seen[opt.Value] {
			return authoringError("insert section", s.ID, ErrDuplicateOption)
		}
		seen[opt.Value] = true
	}
	if s.Type == "" {
		s.Type = SectionTypeRadio
	}
	s.Options = append([]Option(nil), s.Options...)
	q.Sections = append(q.Sections, s)
	return nil
}

// RenameSection changes a section's title.
func (q *Questionnaire) RenameSection(id, title string) error {
	s := q.Section(id)
	if s == nil {
		return authoringError("rename section", id, ErrSectionNotFound)
	}
	s.Title = title
	return nil
}

// RemoveSection deletes a section. Conditionals bound to it become unbound and
// lose their text, since their keys no longer mean anything.
func (q *Questionnaire) RemoveSection(id string) error {
	for i := range q.Sections {
		if q.Sections[i].ID != id {
			continue
		}
		for _, c := range q.boundTo(id) {
			c.SectionID = ""
			c.Values = map[string]string{}
		}
		q.Sections = append(q.Sections[:i], q.Sections[i+1:]...)
		return nil
	}
	return authoringError("remove section", id, ErrSectionNotFound)
}

// AddOption appends an option and adds an empty entry for it to every bound conditional.
func (q *Questionnaire) AddOption(sectionID string, opt Option) error {
	s := q.Section(sectionID)
	if s == nil {
		return authoringError("add option", sectionID, ErrSectionNotFound)
	}
	if opt.Value == "" {
		return authoringError("add option", sectionID, ErrInvalidIdentifier)
	}
	if s.HasOption(opt.Value) {
		return authoringError("add option", opt.Value, ErrDuplicateOption)
	}
	s.Options = append(s.Options, opt)
	for _, c := range q.boundTo(sectionID) {
		if _, ok := c.Values[opt.Value]; !ok {
			c.Values[opt.Value] = ""
		}
	}
	return nil
}

// UpdateOption replaces the option identified by oldValue. When the value
// changes, conditional text entered for the old value moves to the new one.
func (q *Questionnaire) UpdateOption(sectionID, oldValue string, opt Option) error {
	s := q.Section(sectionID)
	if s == nil {
		return authoringError("update option", sectionID, ErrSectionNotFound)
	}
	idx := s.optionIndex(oldValue)
	if idx < 0 {
		return authoringError("update option", oldValue, ErrOptionNotFound)
	}
	if opt.Value == "" {
		return authoringError("update option", oldValue, ErrInvalidIdentifier)
	}
	if opt.Value != oldValue && s.HasOption(opt.Value) {
		return authoringError("update option", opt.Value, ErrDuplicateOption)
	}

	s.Options[idx] = opt
	if opt.Value == oldValue {
		return nil
	}
	if s.Default == oldValue {
		s.Default = opt.Value
	}
	for _, c := range q.boundTo(sectionID) {
		c.Values[opt.Value] = c.Values[oldValue]
		delete(c.Values, oldValue)
	}
	return nil
}

// RemoveOption deletes an option, drops its key from bound conditionals and
// moves the default to the first remaining option if needed.
func (q *Questionnaire) RemoveOption(sectionID, value string) error {
	s := q.Section(sectionID)
	if s == nil {
		return authoringError("remove option", sectionID, ErrSectionNotFound)
	}
	idx := s.optionIndex(value)
	if idx < 0 {
		return authoringError("remove option", value, ErrOptionNotFound)
	}
	if len(s.Options) == 1 {
		return authoringError("remove option", value, ErrLastOption)
	}

	s.Options = append(s.Options[:idx], s.Options[idx+1:]...)
	if s.Default == value {
		s.Default = s.Options[0].Value
	}
	for _, c := range q.boundTo(sectionID) {
		delete(c.Values, value)
	}
	return nil
}

// SetDefault changes a section's default option.
func (q *Questionnaire) SetDefault(sectionID, value string) error {
	s := q.Section(sectionID)
	if s == nil {
		return authoringError("set default", sectionID, ErrSectionNotFound)
	}
	if !s.HasOption(value) {
		return authoringError("set default", value, ErrOptionNotFound)
	}
	s.Default = value
	return nil
}

// BindConditional points a conditional at a section and rebuilds its values
// keyed by that section's options. Text for option values present in both the
// old and the new map is kept; everything else is discarded. An empty sectionID
// unbinds the conditional.
func (q *Questionnaire) BindConditional(condID, sectionID string) error {
	c, ok := q.Conditionals[condID]
	if !ok || c == nil {
		return authoringError("bind conditional", condID, ErrConditionalNotFound)
	}
	if sectionID == "" {
		c.SectionID = ""
		c.Values = map[string]string{}
		return nil
	}
	s := q.Section(sectionID)
	if s == nil {
		return authoringError("bind conditional", sectionID, ErrSectionNotFound)
	}

	values := make(map[string]string, len(s.Options))
	for _, v := range s.OptionValues() {
		values[v] = c.Values[v]
	}
	c.SectionID = sectionID
	c.Values = values
	return nil
}

// SetConditionalValue sets the text shown when the bound section has optionValue selected.
func (q *Questionnaire) SetConditionalValue(condID, optionValue, text string) error {
	c, ok := q.Conditionals[condID]
	if !ok || c == nil {
		return authoringError("set conditional value", condID, ErrConditionalNotFound)
	}
	if s := q.Section(c.SectionID); s != nil && !s.HasOption(optionValue) {
		return authoringError("set conditional value", optionValue, ErrOptionNotFound)
	}
	if c.Values == nil {
		c.Values = map[string]string{}
	}
	c.Values[optionValue] = text
	return nil
}

// AddConditional registers a conditional by hand, unbound.
func (q *Questionnaire) AddConditional(condID string) error {
	if !ValidCondID(condID) {
		return authoringError("add conditional", condID, ErrInvalidIdentifier)
	}
	if q.Conditionals == nil {
		q.Conditionals = Conditionals{}
	}
	if _, ok := q.Conditionals[condID]; ok {
		return nil
	}
	q.Conditionals[condID] = newConditionalFor(condID, nil)
	return nil
}

// RemoveConditional deletes a conditional entry.
func (q *Questionnaire) RemoveConditional(condID string) error {
	if _, ok := q.Conditionals[condID]; !ok {
		return authoringError("remove conditional", condID, ErrConditionalNotFound)
	}
	delete(q.Conditionals, condID)
	return nil
}
