package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/session"
	"github.com/pixil98/bitcraft-companion/internal/state"
)

func builtins() []*Command {
	return []*Command{
		{
			Name:        "help",
			Category:    "general",
			Description: "List commands or describe one.",
			Inputs:      []InputSpec{{Name: "command", Type: InputTypeString}},
			Run:         runHelp,
		},
		{
			Name:        "quit",
			Category:    "general",
			Description: "Close this console.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				c.quit = true
				return nil
			},
		},
		{
			Name:        "login",
			Category:    "account",
			Description: "Log in. You will be asked for a password.",
			Inputs:      []InputSpec{{Name: "username", Type: InputTypeString, Required: true}},
			Run:         runLogin,
		},
		{
			Name:        "register",
			Category:    "account",
			Description: "Create an account and log in.",
			Inputs: []InputSpec{
				{Name: "username", Type: InputTypeString, Required: true},
				{Name: "email", Type: InputTypeString, Required: true},
			},
			Run: runRegister,
		},
		{
			Name:        "logout",
			Category:    "account",
			Description: "Log out and forget the saved session.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				c.sessions.Logout(ctx)
				return c.writeLine("Logged out.")
			},
		},
		{
			Name:        "whoami",
			Category:    "account",
			Description: "Show the logged in user.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				sess, ok := c.sessions.Current()
				if !ok {
					return c.writeLine("Not logged in.")
				}
				out, err := renderView("whoami", viewData{Value: sess})
				if err != nil {
					return err
				}
				return c.writeLine(out)
			},
		},
		{
			Name:        "map",
			Category:    "world",
			Description: "Show the world map, optionally limited to bounds.",
			Inputs:      []InputSpec{{Name: "bounds", Type: InputTypeString, Rest: true}},
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshWorldMap(ctx, args.String("bounds"))
				return render(c, state.KeyWorldMap, "worldmap", "", c.store.WorldMap(), ran)
			},
		},
		{
			Name:        "claims",
			Category:    "world",
			Description: "List your claims.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshClaims(ctx)
				return render(c, state.KeyClaims, "claims", "", c.store.Claims(), ran)
			},
		},
		{
			Name:        "claim",
			Category:    "world",
			Description: "Show one claim.",
			Inputs:      []InputSpec{{Name: "id", Type: InputTypeString, Required: true}},
			Run: func(ctx context.Context, c *Console, args Args) error {
				return render(c, "", "claimdetail", "", c.store.LookupClaim(ctx, args.String("id")), true)
			},
		},
		{
			Name:        "empires",
			Category:    "world",
			Description: "List your empires.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshEmpires(ctx)
				return render(c, state.KeyEmpires, "empires", "", c.store.Empires(), ran)
			},
		},
		{
			Name:        "empire",
			Category:    "world",
			Description: "Show one empire.",
			Inputs:      []InputSpec{{Name: "id", Type: InputTypeString, Required: true}},
			Run: func(ctx context.Context, c *Console, args Args) error {
				return render(c, "", "empiredetail", "", c.store.LookupEmpire(ctx, args.String("id")), true)
			},
		},
		{
			Name:        "resources",
			Category:    "world",
			Description: "List resources around a point.",
			Inputs: []InputSpec{
				{Name: "x", Type: InputTypeNumber, Required: true},
				{Name: "y", Type: InputTypeNumber, Required: true},
				{Name: "radius", Type: InputTypeNumber},
			},
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshResources(ctx, args.String("x"), args.String("y"), args.String("radius"))
				return render(c, state.KeyResources, "resources", "", c.store.Resources(), ran)
			},
		},
		{
			Name:        "status",
			Category:    "server",
			Description: "Show the game server status.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshServerStatus(ctx)
				return render(c, state.KeyServerStatus, "status", "", c.store.ServerStatus(), ran)
			},
		},
		{
			Name:        "online",
			Category:    "server",
			Description: "List players who are online.",
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.RefreshOnlinePlayers(ctx)
				return render(c, state.KeyOnlinePlayers, "players", "Online players", c.store.OnlinePlayers(), ran)
			},
		},
		{
			Name:        "search",
			Category:    "server",
			Description: "Search players by name.",
			Inputs: []InputSpec{
				{Name: "text", Type: InputTypeString, Required: true},
				{Name: "limit", Type: InputTypeNumber},
			},
			Run: func(ctx context.Context, c *Console, args Args) error {
				ran := c.store.SearchPlayers(ctx, args.String("text"), args.String("limit"))
				title := fmt.Sprintf("Players matching %q", args.String("text"))
				return render(c, state.KeyPlayerSearch, "players", title, c.store.PlayerSearch(), ran)
			},
		},
		{
			Name:        "chat",
			Category:    "chat",
			Description: "Read a chat channel.",
			Inputs:      []InputSpec{{Name: "channel", Type: InputTypeString, Required: true}},
			Run:         runChat,
		},
		{
			Name:        "say",
			Category:    "chat",
			Description: "Send a message to a chat channel.",
			Inputs: []InputSpec{
				{Name: "channel", Type: InputTypeString, Required: true},
				{Name: "message", Type: InputTypeString, Required: true, Rest: true},
			},
			Run: runSay,
		},
	}
}

func runHelp(ctx context.Context, c *Console, args Args) error {
	if name := args.String("command"); name != "" {
		cmd, ok := c.handler.Lookup(name)
		if !ok {
			return userErrorf("Command %q is unknown.", name)
		}
		return c.writeLine(fmt.Sprintf("%s: %s\nUsage: %s", cmd.Name, cmd.Description, cmd.Usage()))
	}

	type group struct {
		Category string
		Names    []string
	}
	categories, names := c.handler.groups()
	groups := make([]group, 0, len(categories))
	for _, cat := range categories {
		groups = append(groups, group{Category: cat, Names: names[cat]})
	}

	out, err := renderView("help", viewData{Value: groups})
	if err != nil {
		return err
	}
	return c.writeLine(out)
}

func runLogin(ctx context.Context, c *Console, args Args) error {
	credential, err := c.ask(ctx, "Password: ")
	if err != nil {
		return err
	}
	return c.login(ctx, args.String("username"), credential)
}

func runRegister(ctx context.Context, c *Console, args Args) error {
	credential, err := c.ask(ctx, "Password: ")
	if err != nil {
		return err
	}

	sess, err := c.sessions.Register(ctx, args.String("username"), args.String("email"), credential)
	if errors.Is(err, session.ErrInvalidEmail) {
		return userErrorf("%q is not a valid email address.", args.String("email"))
	}
	if errors.Is(err, session.ErrInvalidCredentials) {
		return NewUserError("A username is required.")
	}
	if err != nil {
		return err
	}

	return c.writeLine(fmt.Sprintf("Welcome, %s. Your account is ready.", sess.Username))
}

// login establishes the session and loads the user's holdings.
func (c *Console) login(ctx context.Context, username string, credential string) error {
	sess, err := c.sessions.Login(ctx, username, credential)
	if errors.Is(err, session.ErrInvalidCredentials) {
		return NewUserError("Invalid username or password.")
	}
	if err != nil {
		return err
	}

	c.store.RefreshClaims(ctx)
	c.store.RefreshEmpires(ctx)

	msg := fmt.Sprintf("Logged in as %s. You hold %d claim(s) in %d empire(s).",
		sess.Username, len(c.store.Claims().Get()), len(c.store.Empires().Get()))
	if c.store.Claims().Status == state.StatusFailed || c.store.Empires().Status == state.StatusFailed {
		msg += " (sample data, the game API is unavailable)"
	}
	return c.writeLine(msg)
}

func parseChannel(raw string) (bitcraft.Channel, error) {
	ch, err := bitcraft.ParseChannel(strings.ToLower(raw))
	if err != nil {
		names := make([]string, 0, len(bitcraft.Channels))
		for _, c := range bitcraft.Channels {
			names = append(names, c.String())
		}
		return ch, userErrorf("Unknown channel %q. Choose one of: %s.", raw, strings.Join(names, ", "))
	}
	return ch, nil
}

func runChat(ctx context.Context, c *Console, args Args) error {
	ch, err := parseChannel(args.String("channel"))
	if err != nil {
		return err
	}

	ran, err := c.store.FetchMessages(ctx, ch)
	if err != nil {
		return err
	}
	return render(c, state.ChatKey(ch), "chat", fmt.Sprintf("%s chat", ch), c.store.Messages(ch), ran)
}

func runSay(ctx context.Context, c *Console, args Args) error {
	ch, err := parseChannel(args.String("channel"))
	if err != nil {
		return err
	}

	_, err = c.store.SendMessage(ctx, ch, args.String("message"))
	switch {
	case errors.Is(err, state.ErrNoSession):
		return NewUserError("You must log in to chat.")
	case errors.Is(err, state.ErrEmptyMessage):
		return NewUserError("Say what?")
	case err != nil:
		return err
	}

	return render(c, state.ChatKey(ch), "chat", fmt.Sprintf("%s chat", ch), c.store.Messages(ch), true)
}
