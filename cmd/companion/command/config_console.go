package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// ConsoleConfig chooses where consoles run. Stdio is on unless disabled; a
// non-zero TelnetPort also serves consoles over telnet.
type ConsoleConfig struct {
	DisableStdio bool   `json:"disable_stdio"`
	TelnetPort   uint16 `json:"telnet_port"`
	Width        *int   `json:"width"`
	MaxConsoles  int    `json:"max_consoles"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.DisableStdio && c.TelnetPort == 0 {
		el.Add(fmt.Errorf("console: stdio is disabled and no telnet_port is set"))
	}
	if c.Width != nil && *c.Width < 0 {
		el.Add(fmt.Errorf("console: width cannot be negative"))
	}
	if c.MaxConsoles < 0 {
		el.Add(fmt.Errorf("console: max_consoles cannot be negative"))
	}

	return el.Err()
}
