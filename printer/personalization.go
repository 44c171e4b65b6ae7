package printer

import (
	"bytes"
	"encoding/json"
	"strings"
)

// personalization is the structured note the POS attaches to an order item.
type personalization struct {
	Extra   string   `json:"agregado"`
	Sauces  []string `json:"salsas"`
	Without []string `json:"sinIngredientes"`
	Drinks  []drink  `json:"bebidas"`
	Details string   `json:"detalles"`
}

type drink struct {
	Name   string `json:"nombre"`
	Flavor string `json:"sabor"`
}

// decodedNote is either a structured personalization or free text typed by
// an operator.
type decodedNote struct {
	structured *personalization
	text       string
}

func parseNote(raw string) decodedNote {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return decodedNote{text: raw}
	}
	var p personalization
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return decodedNote{text: raw}
	}
	return decodedNote{structured: &p}
}

// DecodePersonalization renders an item note as a single annotation line.
// Notes that are not a JSON object come back verbatim.
func DecodePersonalization(raw string) string {
	if raw == "" {
		return ""
	}
	note := parseNote(raw)
	if note.structured == nil {
		return note.text
	}
	p := note.structured

	var parts []string
	if p.Extra != "" {
		parts = append(parts, "Agregado: "+p.Extra)
	}
	if sauces := nonEmpty(p.Sauces); len(sauces) > 0 {
		parts = append(parts, plural("Salsa", len(sauces))+": "+strings.Join(sauces, ", "))
	}
	if without := nonEmpty(p.Without); len(without) > 0 {
		parts = append(parts, "Sin: "+strings.Join(without, ", "))
	}
	names := make([]string, 0, len(p.Drinks))
	for _, d := range p.Drinks {
		switch {
		case d.Name == "":
		case d.Flavor != "":
			names = append(names, d.Name+" ("+d.Flavor+")")
		default:
			names = append(names, d.Name)
		}
	}
	if len(names) > 0 {
		parts = append(parts, plural("Bebida", len(names))+": "+strings.Join(names, ", "))
	}
	if p.Details != "" {
		parts = append(parts, "Nota: "+p.Details)
	}
	return strings.Join(parts, " | ")
}

func plural(label string, n int) string {
	if n > 1 {
		return label + "s"
	}
	return label
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
