package adcselector

import "github.com/goliatone/go-adc-selector/pkg/catalog"

// State is the field's position in the load cycle.
type State string

const (
	StateInitial           State = "initial"
	StateAwaitingToken     State = "awaiting_token"
	StateAwaitingTemplates State = "awaiting_templates"
	StateReady             State = "ready"
	StateFailed            State = "failed"
)

// Card is one rendered template.
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters,omitempty"`
	Selected    bool     `json:"selected"`
}

// View is a render-ready snapshot of a field.
type View struct {
	FieldName    string `json:"field_name"`
	State        State  `json:"state"`
	Loading      bool   `json:"loading"`
	Failed       bool   `json:"failed"`
	Error        string `json:"error,omitempty"`
	Placeholders int    `json:"placeholders"`
	Cards        []Card `json:"cards"`
	Selected     string `json:"selected,omitempty"`
	Required     bool   `json:"required"`
	HasError     bool   `json:"has_error"`
}

// SelectedCount reports how many cards are highlighted.
func (v View) SelectedCount() int {
	count := 0
	for _, card := range v.Cards {
		if card.Selected {
			count++
		}
	}
	return count
}

// BuildCards maps templates to cards. Only the card whose id equals selected is
// highlighted; ids are compared exactly, so an unknown value highlights none.
func BuildCards(templates []catalog.Template, selected string) []Card {
	cards := make([]Card, 0, len(templates))
	marked := false
	for _, tpl := range templates {
		isSelected := !marked && selected != "" && tpl.ID == selected
		if isSelected {
			marked = true
		}
		cards = append(cards, Card{
			ID:          tpl.ID,
			Name:        tpl.Name,
			Description: tpl.Description,
			Parameters:  tpl.ParameterNames(),
			Selected:    isSelected,
		})
	}
	return cards
}
