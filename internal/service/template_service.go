// Package service implements template authoring and rendering on top of a
// template store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/benjaminschreck/go-clause/internal/store"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// ErrInvalidInput marks requests that are rejected before touching the store.
var ErrInvalidInput = errors.New("invalid input")

// TemplateView is a stored template together with its decoded questionnaire.
// Warnings carries decode problems that were degraded to an empty questionnaire.
type TemplateView struct {
	store.Template
	Parsed   *clause.Questionnaire `json:"parsedQuestionnaire"`
	Warnings []string              `json:"warnings,omitempty"`
}

// CreateInput holds the fields of a new template.
type CreateInput struct {
	Title         string
	ContractHTML  string
	Questionnaire string
}

// RenderInput selects answers and the field values to carry into the output.
// When HTML is set, typed values are collected from it and override Fields.
type RenderInput struct {
	Answers map[string]string
	Fields  map[string]string
	HTML    string
}

// RenderResult is one render cycle.
type RenderResult struct {
	HTML    string             `json:"html"`
	Answers clause.Answers     `json:"answers"`
	Fields  clause.FieldValues `json:"fields"`
}

// ExportResult is a finished download.
type ExportResult struct {
	Body        string
	ContentType string
	FileName    string
}

// DetectResult lists the markers found in a document.
type DetectResult struct {
	Conditionals []string          `json:"conditionals"`
	Fields       []clause.FieldRef `json:"fields"`
}

// TemplateService handles template operations
type TemplateService struct {
	store  store.Store
	engine *clause.Engine
	logger *clause.Logger
	newID  func() string
}

// NewTemplateService creates a new template service
func NewTemplateService(s store.Store, engine *clause.Engine, logger *clause.Logger) *TemplateService {
	if engine == nil {
		engine = clause.New()
	}
	if logger == nil {
		logger = clause.NopLogger()
	}
	return &TemplateService{
		store:  s,
		engine: engine,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Create stores a new template. A questionnaire that cannot be decoded is
// rejected; conditionals referenced by the HTML are added to it.
func (s *TemplateService) Create(ctx context.Context, in CreateInput) (*TemplateView, error) {
	q, err := clause.ParseQuestionnaire(in.Questionnaire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	q.SyncConditionals(in.ContractHTML)

	data, err := q.Serialize()
	if err != nil {
		return nil, err
	}

	id := s.newID()
	t, err := s.store.Put(ctx, id, store.Patch{
		Title:         store.String(in.Title),
		ContractHTML:  store.String(in.ContractHTML),
		Questionnaire: store.String(data),
	})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.WithFields(clause.Fields{"id": id, "conditionals": len(q.Conditionals)}).Info("Template created")
	return &TemplateView{Template: *t, Parsed: q}, nil
}

// Get loads a template and decodes its questionnaire.
func (s *TemplateService) Get(ctx context.Context, id string) (*TemplateView, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *TemplateService) view(t *store.Template) *TemplateView {
	v := &TemplateView{Template: *t}
	q, err := clause.ParseQuestionnaire(t.Questionnaire)
	if err != nil {
		s.logger.WithFields(clause.Fields{"id": t.ID, "error": err}).Warn("Stored questionnaire is malformed, using an empty one")
		v.Warnings = append(v.Warnings, err.Error())
	}
	v.Parsed = q
	return v
}

// UpdateHTML replaces the contract HTML and adds entries for newly referenced
// conditionals. It returns the ids that were added.
func (s *TemplateService) UpdateHTML(ctx context.Context, id, html string) (*TemplateView, []string, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	q := current.Parsed
	added := q.SyncConditionals(html)
	data, err := q.Serialize()
	if err != nil {
		return nil, nil, err
	}

	t, err := s.store.Put(ctx, id, store.Patch{
		ContractHTML:  store.String(html),
		Questionnaire: store.String(data),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("update template html: %w", err)
	}

	if len(added) > 0 {
		s.logger.WithFields(clause.Fields{"id": id, "added": added}).Info("Conditionals added from document")
	}
	return &TemplateView{Template: *t, Parsed: q, Warnings: current.Warnings}, added, nil
}

// UpdateQuestionnaire stores q as the template's questionnaire and returns the
// authoring issues it has against the current HTML.
func (s *TemplateService) UpdateQuestionnaire(ctx context.Context, id string, q *clause.Questionnaire) (*TemplateView, []clause.ValidationIssue, error) {
	if q == nil {
		q = clause.NewQuestionnaire()
	}
	for _, sec := range q.Sections {
		if sec.ID == "" {
			return nil, nil, fmt.Errorf("%w: section without id", ErrInvalidInput)
		}
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, nil, err
	}

	data, err := q.Serialize()
	if err != nil {
		return nil, nil, err
	}
	t, err := s.store.Put(ctx, id, store.Patch{Questionnaire: store.String(data)})
	if err != nil {
		return nil, nil, fmt.Errorf("update questionnaire: %w", err)
	}

	v := s.view(t)
	return v, clause.Validate(v.Parsed, t.ContractHTML), nil
}

// Import converts a .docx file and makes it the template's HTML.
func (s *TemplateService) Import(ctx context.Context, id string, docx []byte) (*TemplateView, []string, error) {
	html, err := s.engine.ImportDocx(docx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.store.Get(ctx, id); errors.Is(err, store.ErrNotFound) {
		if _, err := s.store.Put(ctx, id, store.Patch{}); err != nil {
			return nil, nil, fmt.Errorf("create template: %w", err)
		}
	} else if err != nil {
		return nil, nil, err
	}
	return s.UpdateHTML(ctx, id, html)
}

// Render runs one render cycle. Answers start from section defaults.
func (s *TemplateService) Render(ctx context.Context, id string, in RenderInput) (*RenderResult, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(v, in)
}

func (s *TemplateService) render(v *TemplateView, in RenderInput) (*RenderResult, error) {
	answers := clause.DefaultAnswers(v.Parsed).With(in.Answers)

	prior := clause.NewFieldValues(in.Fields)
	if in.HTML != "" {
		typed, err := clause.CollectFieldValues(in.HTML)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		prior = prior.Merge(typed)
	}

	html, kept := s.engine.RenderWithFields(v.ContractHTML, v.Parsed.Conditionals, answers, prior)
	return &RenderResult{HTML: html, Answers: answers, Fields: kept}, nil
}

// Export renders the template and wraps the result for target.
func (s *TemplateService) Export(ctx context.Context, id string, target clause.ExportTarget, in RenderInput) (*ExportResult, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.render(v, in)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Body:        clause.Export(target, res.HTML, v.Title),
		ContentType: target.ContentType(),
		FileName:    target.FileName(v.Title),
	}, nil
}

// Validate lists authoring issues of a stored template.
func (s *TemplateService) Validate(ctx context.Context, id string) ([]clause.ValidationIssue, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	issues := clause.Validate(v.Parsed, v.ContractHTML)
	for _, w := range v.Warnings {
		issues = append(issues, clause.ValidationIssue{Field: "questionnaire", Message: w})
	}
	return issues, nil
}

// Detect lists the markers of html.
func (s *TemplateService) Detect(html string) DetectResult {
	return DetectResult{
		Conditionals: clause.DetectConditionalIDs(html),
		Fields:       clause.DetectFields(html),
	}
}
