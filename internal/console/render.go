package console

import (
	"strings"

	"github.com/pixil98/bitcraft-companion/internal/display"
	"github.com/pixil98/bitcraft-companion/internal/state"
)

// render shows st through the named view. ran is false when the refresh was
// skipped because another one was in flight. An empty key marks nothing seen.
func render[T any](c *Console, key string, view string, title string, st state.QueryState[T], ran bool) error {
	var b strings.Builder

	if !ran {
		b.WriteString("A refresh is already in progress, showing the last known data.\n")
	}
	if st.Status == state.StatusFailed {
		b.WriteString(display.Banner("Live data unavailable, showing sample data: " + st.ErrorMessage))
		b.WriteString("\n")
	}

	if !st.HasValue() {
		b.WriteString("Nothing loaded yet.")
	} else {
		out, err := renderView(view, viewData{Value: st.Get(), Self: c.self(), Title: title})
		if err != nil {
			return err
		}
		b.WriteString(out)
	}

	if key == "" {
		return c.writeLine(b.String())
	}
	return c.show(key, b.String())
}
