// Package store persists template records: the authored contract HTML and its
// serialized questionnaire, keyed by template id.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no template has the requested id.
var ErrNotFound = errors.New("template not found")

// Template is one persisted record.
type Template struct {
	ID            string    `json:"id" bson:"_id"`
	Title         string    `json:"title" bson:"title"`
	ContractHTML  string    `json:"contractHtml" bson:"contractHtml"`
	Questionnaire string    `json:"questionnaire" bson:"questionnaire"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Patch lists the fields a Put replaces. Nil fields are left as they are.
type Patch struct {
	Title         *string
	ContractHTML  *string
	Questionnaire *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.ContractHTML == nil && p.Questionnaire == nil
}

// apply writes the patch onto t.
func (p Patch) apply(t *Template) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.ContractHTML != nil {
		t.ContractHTML = *p.ContractHTML
	}
	if p.Questionnaire != nil {
		t.Questionnaire = *p.Questionnaire
	}
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}

// Store reads and writes template records. Put creates the record when id is unknown.
type Store interface {
	Get(ctx context.Context, id string) (*Template, error)
	Put(ctx context.Context, id string, patch Patch) (*Template, error)
}
