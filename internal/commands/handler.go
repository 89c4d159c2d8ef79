// Package commands implements the text command grammar shared by the consoles
// and the NATS control channel.
package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-atlas/internal/atlas"
	"github.com/pixil98/go-atlas/internal/metrics"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

// Controls is the part of the app the commands drive.
type Controls interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	TogglePlay(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	JumpTo(ctx context.Context, year int) error
	SetSpeed(ctx context.Context, speed int) error
	Select(ctx context.Context, key string) (atlas.Popup, error)
	SelectAt(ctx context.Context, lon, lat float64) (atlas.Popup, error)
	ClearSelection(ctx context.Context) error
	Toggle3D(ctx context.Context) (bool, error)
	ToggleStats(ctx context.Context) (bool, error)
	Status(ctx context.Context) (atlas.Status, error)
	Describe(ctx context.Context, key string) (atlas.Popup, error)
}

type Handler struct {
	controls Controls
	commands map[string]*Command
	names    []string
}

// NewHandler creates a handler with every built-in command registered.
func NewHandler(controls Controls) *Handler {
	h := &Handler{
		controls: controls,
		commands: make(map[string]*Command),
	}
	for _, cmd := range builtins(h) {
		if err := h.Register(cmd); err != nil {
			panic(fmt.Sprintf("registering built-in command: %v", err))
		}
	}
	return h
}

// Register adds a command under its name and aliases.
func (h *Handler) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	keys := append([]string{cmd.Name}, cmd.Aliases...)
	for _, k := range keys {
		if _, exists := h.commands[strings.ToLower(k)]; exists {
			return fmt.Errorf("command %q already registered", k)
		}
	}
	for _, k := range keys {
		h.commands[strings.ToLower(k)] = cmd
	}

	h.names = append(h.names, cmd.Name)
	slices.Sort(h.names)
	return nil
}

// Commands returns the registered commands sorted by name.
func (h *Handler) Commands() []*Command {
	cmds := make([]*Command, 0, len(h.names))
	for _, n := range h.names {
		cmds = append(cmds, h.commands[strings.ToLower(n)])
	}
	return cmds
}

// Exec parses and runs one line of input and returns the rendered output.
// Invalid input is reported as a *UserError. A command that ends the session
// returns its output together with ErrQuit.
func (h *Handler) Exec(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	name := strings.ToLower(fields[0])
	cmd, ok := h.commands[name]
	if !ok {
		metrics.CommandsTotal.WithLabelValues("unknown", "user_error").Inc()
		return "", &UserError{Command: name, Message: fmt.Sprintf("Unknown command: %s. Type 'help' for a list.", fields[0])}
	}

	out, err := h.exec(ctx, cmd, fields[1:])
	metrics.CommandsTotal.WithLabelValues(cmd.Name, resultLabel(err)).Inc()
	if err != nil {
		return "", err
	}
	if cmd.Quit {
		return out, ErrQuit
	}
	return out, nil
}

func (h *Handler) exec(ctx context.Context, cmd *Command, rawArgs []string) (string, error) {
	in, err := parseArgs(cmd.Inputs, rawArgs)
	if err != nil {
		return "", withCommand(cmd.Name, err)
	}

	result, err := cmd.Run(ctx, h.controls, in)
	if err != nil {
		return "", withCommand(cmd.Name, translate(err))
	}

	out, err := ExpandTemplate(cmd.Output, TemplateData{
		Command: cmd.Name,
		Input:   in.Values,
		Result:  result,
	})
	if err != nil {
		return "", fmt.Errorf("rendering %s output: %w", cmd.Name, err)
	}
	return out, nil
}

// translate turns domain errors caused by bad input into user errors.
func translate(err error) error {
	switch {
	case errors.Is(err, playback.ErrUnknownYear):
		return NewUserError("That year has no data. Type 'years' to see what is loaded.")
	case errors.Is(err, yeardata.ErrNoFeature):
		return NewUserError("No country found there.")
	case errors.Is(err, atlas.ErrNotReady):
		return NewUserError(atlas.NoDataMessage)
	}
	return err
}

func withCommand(name string, err error) error {
	var ue *UserError
	if errors.As(err, &ue) && ue.Command == "" {
		ue.Command = name
	}
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsUserError(err):
		return "user_error"
	default:
		return "error"
	}
}

// parseArgs validates raw arguments against input specs.
func parseArgs(specs []InputSpec, rawArgs []string) (*Input, error) {
	in := &Input{Values: make(map[string]any, len(specs))}

	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(fmt.Sprintf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs)))
	}

	argIndex := 0
	for _, spec := range specs {
		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(fmt.Sprintf("Missing required parameter: %s.", spec.Name))
			}
			continue
		}

		var raw string
		if spec.Rest {
			// Consume all remaining args joined with spaces
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}
		in.Values[spec.Name] = value
	}

	return in, nil
}

func parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil

	case InputTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid coordinate.", raw))
		}
		return f, nil

	default:
		return nil, fmt.Errorf("unknown input type %q", inputType)
	}
}
