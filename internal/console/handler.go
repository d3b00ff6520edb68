package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Handler is the command registry shared by every console.
type Handler struct {
	commands map[string]*Command
}

// NewHandler returns a handler with the built-in commands registered.
func NewHandler() *Handler {
	h := &Handler{commands: map[string]*Command{}}
	for _, cmd := range builtins() {
		if err := h.Register(cmd); err != nil {
			panic(fmt.Sprintf("registering %q: %v", cmd.Name, err))
		}
	}
	return h
}

// Register adds cmd under its lower-cased name.
func (h *Handler) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	name := strings.ToLower(cmd.Name)
	if _, exists := h.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	h.commands[name] = cmd
	return nil
}

// Lookup returns the command called name.
func (h *Handler) Lookup(name string) (*Command, bool) {
	cmd, ok := h.commands[strings.ToLower(name)]
	return cmd, ok
}

// Exec runs one input line.
func (h *Handler) Exec(ctx context.Context, c *Console, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd, ok := h.Lookup(parts[0])
	if !ok {
		return userErrorf("Unknown command: %s. Type 'help' for a list.", parts[0])
	}

	args, err := parseArgs(cmd.Inputs, parts[1:])
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return userErrorf("%s\nUsage: %s", userErr.Message, cmd.Usage())
		}
		return err
	}

	return cmd.Run(ctx, c, args)
}

// groups returns command names by category, both sorted.
func (h *Handler) groups() ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for name, cmd := range h.commands {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], name)
	}

	categories := make([]string, 0, len(groups))
	for cat, names := range groups {
		sort.Strings(names)
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	return categories, groups
}
