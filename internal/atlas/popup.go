package atlas

import (
	"fmt"
	"strings"
)

const Attribution = "Data: IHME, Global Burden of Disease (2024) – with major processing by Our World in Data"

// Popup describes one country in the current year.
type Popup struct {
	ID       string  `json:"id"`
	Country  string  `json:"country"`
	Year     int     `json:"year"`
	Value    float64 `json:"value"`
	HasValue bool    `json:"hasValue"`
	Extruded bool    `json:"extruded"`
}

// Action is what clicking the country again would do.
func (p Popup) Action() string {
	if p.Extruded {
		return "flatten"
	}
	return "extrude"
}

func (p Popup) String() string {
	name := p.Country
	if name == "" {
		name = "Unknown"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)\n", name, p.Year)
	fmt.Fprintf(&sb, "Anxiety Disorders (%d): %.2f cases per 1000 people\n", p.Year, p.Value)
	sb.WriteString(Attribution + "\n")
	fmt.Fprintf(&sb, "Click to %s", p.Action())
	return sb.String()
}
