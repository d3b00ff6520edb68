package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-errors"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Single word, or the rest of the line when Rest is set
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string
	Type     InputType
	Required bool
	Rest     bool // If true, captures all remaining input
}

// CommandFunc runs a command for one console.
type CommandFunc func(ctx context.Context, c *Console, args Args) error

type Command struct {
	Name        string
	Category    string
	Description string
	Inputs      []InputSpec
	Run         CommandFunc
}

func (c *Command) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.Run == nil {
		el.Add(fmt.Errorf("command %q: run is required", c.Name))
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			el.Add(fmt.Errorf("command %q: input %d: name is required", c.Name, i))
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			el.Add(fmt.Errorf("command %q: input %q: unknown type %q", c.Name, input.Name, input.Type))
		}
		if input.Rest && i != len(c.Inputs)-1 {
			el.Add(fmt.Errorf("command %q: input %q: only the last input can have rest", c.Name, input.Name))
		}
	}

	return el.Err()
}

// Usage renders the command line form, e.g. "resources <x> <y> [radius]".
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, input := range c.Inputs {
		name := input.Name
		if input.Rest {
			name += "..."
		}
		if input.Required {
			parts = append(parts, fmt.Sprintf("<%s>", name))
		} else {
			parts = append(parts, fmt.Sprintf("[%s]", name))
		}
	}
	return strings.Join(parts, " ")
}

// ParsedArg represents a validated and parsed command argument.
type ParsedArg struct {
	Spec  *InputSpec
	Raw   string // Original user input
	Value any    // int for number, string for string
}

// Args holds parsed arguments by input name. Missing optional inputs are
// absent.
type Args map[string]ParsedArg

// String returns the raw text given for name, or "".
func (a Args) String(name string) string {
	return a[name].Raw
}

// parseArgs validates raw string arguments against input specs.
func parseArgs(specs []InputSpec, rawArgs []string) (Args, error) {
	requiredCount := 0
	for _, spec := range specs {
		if spec.Required {
			requiredCount++
		}
	}

	if len(rawArgs) < requiredCount {
		return nil, userErrorf("Expected at least %d argument(s), got %d.", requiredCount, len(rawArgs))
	}

	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, userErrorf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs))
	}

	args := make(Args, len(specs))
	argIndex := 0

	for i := range specs {
		spec := &specs[i]

		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, userErrorf("Missing required parameter: %s.", spec.Name)
			}
			continue
		}

		var raw string
		if spec.Rest {
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

		args[spec.Name] = ParsedArg{
			Spec:  spec,
			Raw:   raw,
			Value: value,
		}
	}

	return args, nil
}

func parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, userErrorf("%q is not a valid number.", raw)
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown parameter type %q", inputType)
	}
}
