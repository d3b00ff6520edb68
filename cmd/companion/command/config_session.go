package command

import (
	"context"
	"fmt"

	"github.com/pixil98/bitcraft-companion/internal/storage"
	"github.com/pixil98/go-errors"
)

type SlotDriver int

const (
	SlotDriverFile SlotDriver = iota
	SlotDriverSQLite
	SlotDriverMemory
)

func (d *SlotDriver) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file", "":
		*d = SlotDriverFile
	case "sqlite":
		*d = SlotDriverSQLite
	case "memory":
		*d = SlotDriverMemory
	default:
		return fmt.Errorf("unknown session driver: %s", text)
	}
	return nil
}

// SessionConfig picks where the logged in session survives restarts. Path is
// a directory for the file driver and a database file for sqlite.
type SessionConfig struct {
	Driver SlotDriver `json:"driver"`
	Path   string     `json:"path"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	if c.Driver != SlotDriverMemory && c.Path == "" {
		el.Add(fmt.Errorf("session: path is required"))
	}

	return el.Err()
}

func (c *SessionConfig) buildSlots(ctx context.Context) (storage.Slots, error) {
	switch c.Driver {
	case SlotDriverFile:
		return storage.NewFileSlots(c.Path)
	case SlotDriverSQLite:
		return storage.NewSQLiteSlots(ctx, c.Path)
	case SlotDriverMemory:
		return storage.NewMemorySlots(), nil
	default:
		return nil, fmt.Errorf("unknown session driver: %v", c.Driver)
	}
}
