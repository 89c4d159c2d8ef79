package commands

import (
	"context"
	"fmt"
	"strings"
)

// InputType represents the type of a command input.
type InputType string

const (
	InputTypeString InputType = "string" // Text input (single word unless Rest)
	InputTypeNumber InputType = "number" // Integer
	InputTypeFloat  InputType = "float"  // Decimal, e.g. a coordinate
)

// InputSpec defines an input a command accepts from the console.
type InputSpec struct {
	Name     string
	Type     InputType
	Required bool
	Rest     bool // If true, captures all remaining input
}

// CommandFunc runs a command and returns the value handed to its output template.
type CommandFunc func(ctx context.Context, c Controls, in *Input) (any, error)

// Command is one console verb.
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Inputs  []InputSpec
	Output  string // text/template over TemplateData
	Run     CommandFunc
	Quit    bool // Ends the session after output is written
}

// Usage returns the command name followed by its inputs, e.g. "jump <year>".
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, in := range c.Inputs {
		if in.Required {
			parts = append(parts, "<"+in.Name+">")
		} else {
			parts = append(parts, "["+in.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}

func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name not set")
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: run func not set", c.Name)
	}

	optionalSeen := false
	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d: name is required", i)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber, InputTypeFloat:
		case "":
			return fmt.Errorf("input %q: type is required", input.Name)
		default:
			return fmt.Errorf("input %q: unknown type %q", input.Name, input.Type)
		}
		// Only the last input can have rest=true
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("input %q: only the last input can have rest=true", input.Name)
		}
		if input.Required && optionalSeen {
			return fmt.Errorf("input %q: required input follows an optional one", input.Name)
		}
		if !input.Required {
			optionalSeen = true
		}
	}

	return nil
}

// Input holds the parsed inputs of one invocation.
type Input struct {
	Values map[string]any
}

func (in *Input) String(name string) string {
	v, _ := in.Values[name].(string)
	return v
}

func (in *Input) Int(name string) int {
	v, _ := in.Values[name].(int)
	return v
}

func (in *Input) Float(name string) float64 {
	v, _ := in.Values[name].(float64)
	return v
}

func (in *Input) Has(name string) bool {
	_, ok := in.Values[name]
	return ok
}
