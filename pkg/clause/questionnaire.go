package clause

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

var errSectionWithoutID = errors.New("section without id")

// SectionTypeRadio is the only section type: a single choice among options.
const SectionTypeRadio = "radio"

// Option is one selectable choice within a Section.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Note  string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Section is a single-choice question group.
type Section struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Type    string   `json:"type" yaml:"type"`
	Default string   `json:"default" yaml:"default"`
	Options []Option `json:"options" yaml:"options"`
}

// HasOption reports whether value names one of the section's options.
func (s *Section) HasOption(value string) bool {
	return s.optionIndex(value) >= 0
}

func (s *Section) optionIndex(value string) int {
	for i, opt := range s.Options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

// DefaultValue returns Default when it names an option, otherwise the first option.
func (s *Section) DefaultValue() string {
	if s.HasOption(s.Default) {
		return s.Default
	}
	if len(s.Options) > 0 {
		return s.Options[0].Value
	}
	return ""
}

// OptionValues returns the option values in order.
func (s *Section) OptionValues() []string {
	values := make([]string, len(s.Options))
	for i, opt := range s.Options {
		values[i] = opt.Value
	}
	return values
}

// Conditional binds one {{COND:id}} marker to the section that controls it.
type Conditional struct {
	ID        string            `json:"-" yaml:"-"`
	SectionID string            `json:"sectionId" yaml:"sectionId"`
	Values    map[string]string `json:"values" yaml:"values"`
}

// Resolve returns the text selected by answers, or "" when nothing matches.
func (c *Conditional) Resolve(answers Answers) string {
	if c == nil {
		return ""
	}
	return c.Values[answers[c.SectionID]]
}

func (c *Conditional) clone() *Conditional {
	if c == nil {
		return nil
	}
	values := make(map[string]string, len(c.Values))
	for k, v := range c.Values {
		values[k] = v
	}
	return &Conditional{ID: c.ID, SectionID: c.SectionID, Values: values}
}

// Conditionals maps conditional ids to their bindings.
type Conditionals map[string]*Conditional

// Clone returns a deep copy.
func (cs Conditionals) Clone() Conditionals {
	out := make(Conditionals, len(cs))
	for id, c := range cs {
		out[id] = c.clone()
	}
	return out
}

// IDs returns the conditional ids sorted.
func (cs Conditionals) IDs() []string {
	ids := make([]string, 0, len(cs))
	for id := range cs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Questionnaire is the persisted schema of sections and conditional bindings.
type Questionnaire struct {
	Sections     []Section    `json:"sections" yaml:"sections"`
	Conditionals Conditionals `json:"conditionals" yaml:"conditionals"`
}

// NewQuestionnaire returns an empty questionnaire.
func NewQuestionnaire() *Questionnaire {
	return &Questionnaire{Sections: []Section{}, Conditionals: Conditionals{}}
}

// IsEmpty reports whether the questionnaire has no sections and no conditionals.
func (q *Questionnaire) IsEmpty() bool {
	return q == nil || (len(q.Sections) == 0 && len(q.Conditionals) == 0)
}

// Section returns the section with the given id, or nil.
func (q *Questionnaire) Section(id string) *Section {
	if q == nil {
		return nil
	}
	for i := range q.Sections {
		if q.Sections[i].ID == id {
			return &q.Sections[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (q *Questionnaire) Clone() *Questionnaire {
	if q == nil {
		return NewQuestionnaire()
	}
	out := &Questionnaire{
		Sections:     make([]Section, len(q.Sections)),
		Conditionals: q.Conditionals.Clone(),
	}
	for i, s := range q.Sections {
		s.Options = append([]Option(nil), s.Options...)
		out.Sections[i] = s
	}
	return out
}

// Serialize encodes the questionnaire for the template record.
// An empty questionnaire is stored as "".
func (q *Questionnaire) Serialize() (string, error) {
	if q.IsEmpty() {
		return "", nil
	}

	wire := *q
	if wire.Sections == nil {
		wire.Sections = []Section{}
	}
	if wire.Conditionals == nil {
		wire.Conditionals = Conditionals{}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseQuestionnaire decodes a persisted questionnaire. The result is never nil:
// on failure it is an empty questionnaire and the error is a *QuestionnaireError.
func ParseQuestionnaire(data string) (*Questionnaire, error) {
	if strings.TrimSpace(data) == "" {
		return NewQuestionnaire(), nil
	}

	q, err := decodeQuestionnaireJSON(data)
	if err == nil {
		return q, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(data)
	if repairErr == nil {
		if q, err2 := decodeQuestionnaireJSON(repaired); err2 == nil {
			WithField("input_length", len(data)).Warn("Questionnaire JSON needed repair")
			return q, nil
		}
	}

	return NewQuestionnaire(), &QuestionnaireError{Input: data, Cause: err}
}

// ParseQuestionnaireYAML decodes a hand-authored YAML questionnaire.
func ParseQuestionnaireYAML(data []byte) (*Questionnaire, error) {
	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return NewQuestionnaire(), &QuestionnaireError{Input: string(data), Cause: err}
	}
	out, err := q.normalize()
	if err != nil {
		return NewQuestionnaire(), &QuestionnaireError{Input: string(data), Cause: err}
	}
	return out, nil
}

func decodeQuestionnaireJSON(data string) (*Questionnaire, error) {
	var q Questionnaire
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, err
	}
	return q.normalize()
}

// normalize fills in defaults, conditional ids and rejects structurally broken data.
func (q *Questionnaire) normalize() (*Questionnaire, error) {
	if q.Sections == nil {
		q.Sections = []Section{}
	}
	if q.Conditionals == nil {
		q.Conditionals = Conditionals{}
	}

	for i := range q.Sections {
		s := &q.Sections[i]
		if s.ID == "" {
			return nil, errSectionWithoutID
		}
		if s.Type == "" {
			s.Type = SectionTypeRadio
		}
		if s.Options == nil {
			s.Options = []Option{}
		}
	}

	for id, c := range q.Conditionals {
		if c == nil {
			c = &Conditional{}
			q.Conditionals[id] = c
		}
		c.ID = id
		if c.Values == nil {
			c.Values = map[string]string{}
		}
	}

	return q, nil
}

// Answers holds the selected option value per section id.
type Answers map[string]string

// DefaultAnswers seeds one answer per section from its default.
func DefaultAnswers(q *Questionnaire) Answers {
	answers := Answers{}
	if q == nil {
		return answers
	}
	for i := range q.Sections {
		answers[q.Sections[i].ID] = q.Sections[i].DefaultValue()
	}
	return answers
}

// Set records one selection.
func (a Answers) Set(sectionID, value string) {
	a[sectionID] = value
}

// Clone returns a copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// With returns a copy of a with overrides applied.
func (a Answers) With(overrides map[string]string) Answers {
	out := a.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
