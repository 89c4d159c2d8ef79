package commands

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pixil98/go-atlas/internal/display"
	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/style"
)

// templateFuncs provides sprig plus the console drawing helpers.
var templateFuncs = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["timeline"] = display.Timeline
	funcs["capitalize"] = display.Capitalize
	funcs["sparkline"] = func(samples []series.Sample) string {
		values := make([]float64, len(samples))
		for i, s := range samples {
			values[i] = math.NaN()
			if s.Valid {
				values[i] = s.Value
			}
		}
		return display.Sparkline(values)
	}
	funcs["legend"] = legend
	return funcs
}()

// TemplateData is what command output templates see.
type TemplateData struct {
	Command string
	Input   map[string]any
	Result  any
}

// ExpandTemplate expands a template string using the provided data.
// The data can be any struct - templates access fields via {{ .FieldName }}.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	// Quick check: if no template markers, return as-is
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// legend renders the map color scale, one swatch per class.
func legend() string {
	scale := style.DefaultScale
	if len(scale.Stops) == 0 {
		return legendLine(scale.Base, "all values")
	}

	lines := []string{legendLine(scale.Base, fmt.Sprintf("below %g", scale.Stops[0].Min))}
	for i, stop := range scale.Stops {
		label := fmt.Sprintf("%g and above", stop.Min)
		if i+1 < len(scale.Stops) {
			label = fmt.Sprintf("%g to %g", stop.Min, scale.Stops[i+1].Min)
		}
		lines = append(lines, legendLine(stop.Color, label))
	}
	return strings.Join(lines, "\n")
}

func legendLine(c colorful.Color, label string) string {
	return fmt.Sprintf("%s %s %s", display.Swatch(c, "  "), c.Hex(), label)
}
