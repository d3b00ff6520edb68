package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/display"
	"github.com/pixil98/bitcraft-companion/internal/messaging"
	"github.com/pixil98/bitcraft-companion/internal/session"
	"github.com/pixil98/bitcraft-companion/internal/state"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{0,32}$`)

// Bus delivers state changes published by any console in the process.
type Bus interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

// Console is one interactive session over a line-oriented connection.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	store    *state.Store
	sessions *session.Store
	handler  *Handler
	bus      Bus
	width    int

	lines   chan string
	readErr chan error
	changes chan state.Change
	done    chan struct{}

	// seen holds, per state key, when this console last showed that state.
	seen map[string]time.Time
	quit bool
}

// Run greets the user, offers a login when nobody is logged in, then reads
// commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer close(c.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.greet(ctx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	go c.readLines()
	if c.bus != nil {
		go c.watch(ctx)
	}

	if err := c.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change := <-c.changes:
			msg, ok := c.describe(change)
			if !ok {
				continue
			}
			if err := c.writeLine("\n" + msg); err != nil {
				return err
			}
			if err := c.prompt(); err != nil {
				return err
			}

		case line, ok := <-c.lines:
			if !ok {
				select {
				case err := <-c.readErr:
					return err
				default:
					return nil
				}
			}

			err := c.handler.Exec(ctx, c, strings.TrimSpace(line))
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				var userErr *UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := c.writeLine(userErr.Message); err != nil {
					return err
				}
			}

			if c.quit {
				return c.writeLine("Goodbye!")
			}

			if err := c.prompt(); err != nil {
				return err
			}
		}
	}
}

func (c *Console) greet(ctx context.Context) error {
	if err := c.writeLine("BitCraft Companion. Type 'help' for a list of commands."); err != nil {
		return err
	}

	if sess, ok := c.sessions.Current(); ok {
		return c.writeLine(fmt.Sprintf("Welcome back, %s.", sess.Username))
	}

	username, err := Prompt(c.in, c.out, "Log in as (blank to browse): ", WithMaxTries(3), WithValidator(
		func(s string) (bool, string) {
			if !usernamePattern.MatchString(strings.TrimSpace(s)) {
				return false, "Usernames are letters, digits, '-' and '_', up to 32 characters.\n"
			}
			return true, ""
		},
	))
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return nil
	}

	credential, err := Prompt(c.in, c.out, "Password: ")
	if err != nil {
		return err
	}

	err = c.login(ctx, username, credential)
	var userErr *UserError
	if errors.As(err, &userErr) {
		return c.writeLine(userErr.Message)
	}
	return err
}

// readLines feeds c.lines until input ends or Run returns.
func (c *Console) readLines() {
	defer close(c.lines)

	for {
		line, err := c.in.ReadString('\n')
		if line != "" {
			select {
			case c.lines <- strings.TrimRight(line, "\r\n"):
			case <-c.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.readErr <- err
			}
			return
		}
	}
}

// ask prompts for one more line of input from inside a command.
func (c *Console) ask(ctx context.Context, prompt string) (string, error) {
	if _, err := io.WriteString(c.out, prompt); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// watch forwards bus changes to the run loop until ctx is done.
func (c *Console) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-c.bus.Ready():
	}

	unsubscribe, err := c.bus.Subscribe(messaging.AllStates, func(subject string, data []byte) {
		var change state.Change
		if err := json.Unmarshal(data, &change); err != nil {
			slog.DebugContext(ctx, "ignoring malformed state change", "subject", subject, "error", err)
			return
		}
		select {
		case c.changes <- change:
		default:
		}
	})
	if err != nil {
		slog.WarnContext(ctx, "subscribing to state changes", "error", err)
		return
	}

	<-ctx.Done()
	unsubscribe()
}

// describe turns a change made elsewhere into a notice. Changes older than
// what this console last showed are dropped.
func (c *Console) describe(change state.Change) (string, bool) {
	if seen, ok := c.seen[change.Key]; ok && !change.At.After(seen) {
		return "", false
	}

	switch change.Status {
	case state.StatusFailed:
		return display.Banner(fmt.Sprintf("%s is unavailable, showing sample data: %s", change.Key, change.ErrorMessage)), true
	case state.StatusReady:
		if channel, ok := strings.CutPrefix(change.Key, "chat."); ok {
			return fmt.Sprintf("* New activity on %s chat. Type 'chat %s' to read it.", channel, channel), true
		}
		return fmt.Sprintf("* %s was refreshed.", change.Key), true
	default:
		return "", false
	}
}

// show writes a rendered state, marking it seen.
func (c *Console) show(key string, text string) error {
	c.seen[key] = time.Now()
	return c.writeLine(text)
}

func (c *Console) self() string {
	sess, ok := c.sessions.Current()
	if !ok {
		return ""
	}
	return sess.Id
}

func (c *Console) prompt() error {
	prompt := "> "
	if sess, ok := c.sessions.Current(); ok {
		prompt = fmt.Sprintf("[%s] > ", sess.Username)
	}
	_, err := io.WriteString(c.out, prompt)
	return err
}

func (c *Console) writeLine(msg string) error {
	_, err := io.WriteString(c.out, display.WrapTo(msg, c.width)+"\n\n")
	return err
}
