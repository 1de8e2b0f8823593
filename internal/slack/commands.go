package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdCreate CommandType = "create"
	CmdList   CommandType = "list"
	CmdRemind CommandType = "remind"
	CmdDelete CommandType = "delete"
	CmdConfig CommandType = "config"
	CmdHelp   CommandType = "help"
)

// Command is a parsed /deadline invocation. Positional tokens land in Args,
// key=value tokens in Options.
type Command struct {
	Type    CommandType
	Args    []string
	Options map[string]string
	Raw     string
}

func ParseCommand(text string) (*Command, error) {
	tokens := splitQuoted(text)
	if len(tokens) == 0 {
		return &Command{Type: CmdHelp, Options: map[string]string{}}, nil
	}

	cmd := &Command{
		Options: map[string]string{},
		Raw:     text,
	}

	switch tokens[0] {
	case "create", "new":
		cmd.Type = CmdCreate
	case "list", "ls":
		cmd.Type = CmdList
	case "remind", "add-reminder":
		cmd.Type = CmdRemind
	case "delete", "rm":
		cmd.Type = CmdDelete
	case "config":
		cmd.Type = CmdConfig
	case "help", "":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", tokens[0])
	}

	for _, token := range tokens[1:] {
		if key, value, ok := strings.Cut(token, "="); ok && isOptionKey(key) {
			cmd.Options[key] = value
			continue
		}
		cmd.Args = append(cmd.Args, token)
	}

	return cmd, nil
}

func isOptionKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

// splitQuoted splits on whitespace but keeps double-quoted spans together, so
// due="2025-10-01 18:00" and "Project Name" each come out as one token.
func splitQuoted(s string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func GetHelpText() string {
	return `*Available commands:*

*Projects:*
• ` + "`/deadline create \"Name\" due=\"YYYY-MM-DD HH:MM\" role=<usergroup>`" + ` - Create a deadline with auto-scheduled reminders
    Optional: ` + "`channel=<#channel>` `tz=America/New_York` `offsets=3d,24h` `desc=\"...\"`" + `
• ` + "`/deadline list`" + ` - List project deadlines
• ` + "`/deadline remind <id> <offset>`" + ` - Add a reminder offset (e.g. 4h) to a project
• ` + "`/deadline delete <id>`" + ` - Delete a project and its reminders

*Settings:*
• ` + "`/deadline config channel=<#channel> time=HH:MM tz=<timezone>`" + ` - Configure the daily digest and team timezone
• ` + "`/deadline config`" + ` - Show the current settings

Reminders mention the project role in its channel. The digest lists all deadlines due within 7 days, once per day.`
}
