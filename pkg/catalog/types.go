package catalog

import (
	"sort"
	"strings"
)

// Template is one entry of the ADC catalog. Parameters declares the fields a
// downstream scaffolding step fills in. Values are any JSON value; nil means
// "no default".
type Template struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ParameterNames returns the declared parameter names, sorted.
func (t Template) ParameterNames() []string {
	if len(t.Parameters) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.Parameters))
	for name := range t.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateList is the catalog response body.
type TemplateList struct {
	Templates []Template `json:"templates" yaml:"templates"`
}

// Find returns the template whose id matches.
func (l TemplateList) Find(id string) (Template, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Template{}, false
	}
	for _, tpl := range l.Templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// Clone returns a deep copy so callers can hold the list without sharing maps.
func (l TemplateList) Clone() TemplateList {
	if l.Templates == nil {
		return TemplateList{}
	}
	out := TemplateList{Templates: make([]Template, len(l.Templates))}
	for i, tpl := range l.Templates {
		out.Templates[i] = tpl
		if tpl.Parameters != nil {
			out.Templates[i].Parameters = cloneMap(tpl.Parameters)
		}
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
