package clause

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldValues maps field ids to the text a user typed into them. It is rebuilt
// on every render cycle and only ever holds trimmed, non-empty values.
type FieldValues map[string]string

// NewFieldValues builds a store from raw values, dropping blank entries.
func NewFieldValues(raw map[string]string) FieldValues {
	fv := FieldValues{}
	for id, v := range raw {
		fv.Set(id, v)
	}
	return fv
}

// Set records a value; a blank value removes the entry.
func (fv FieldValues) Set(id, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(fv, id)
		return
	}
	fv[id] = value
}

// Clone returns a copy.
func (fv FieldValues) Clone() FieldValues {
	out := make(FieldValues, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}

// Merge returns a copy of fv overlaid with other.
func (fv FieldValues) Merge(other FieldValues) FieldValues {
	out := fv.Clone()
	for k, v := range other {
		out.Set(k, v)
	}
	return out
}

// Retain returns the entries whose id is in ids.
func (fv FieldValues) Retain(ids []string) FieldValues {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := FieldValues{}
	for k, v := range fv {
		if keep[k] {
			out[k] = v
		}
	}
	return out
}

// IDs returns the stored field ids sorted.
func (fv FieldValues) IDs() []string {
	ids := make([]string, 0, len(fv))
	for id := range fv {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CollectFieldValues scans rendered HTML, as edited by a user, for field elements
// and records the trimmed text of every non-empty one. When a field id occurs
// more than once the last non-empty element wins.
func CollectFieldValues(renderedHTML string) (FieldValues, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return nil, WithContext(err, "collect field values", map[string]interface{}{
			"html_length": len(renderedHTML),
		})
	}

	values := FieldValues{}
	doc.Find("[data-field]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-field")
		if text := strings.TrimSpace(s.Text()); id != "" && text != "" {
			values[id] = text
		}
	})
	return values, nil
}
