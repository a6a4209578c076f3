package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gemrelay/gemrelay/internal/models"
	"github.com/gemrelay/gemrelay/internal/session"
)

const helpText = `I relay your messages to Gemini and send back the reply.
Send text, a photo, or a file. Commands:

/new - start a new conversation
/model <name> - switch model
/system <text> - set the system instruction (empty clears it)
/search on|off - toggle search grounding
/browse on|off - toggle the browse setting
/thinking on|off - toggle the thinking notice
/tokens - show cumulative token usage
/help - this message`

// Commands mutates per-chat settings. Each command touches exactly one
// state field and takes effect on the next turn.
type Commands struct {
	store   session.Store
	locker  session.Locker
	catalog *models.Catalog
	logger  *slog.Logger
}

// NewCommands creates the command handler.
func NewCommands(log *slog.Logger, store session.Store, locker session.Locker, catalog *models.Catalog) *Commands {
	if log == nil {
		log = slog.Default()
	}
	return &Commands{
		store:   store,
		locker:  locker,
		catalog: catalog,
		logger:  log.With(slog.String("service", "commands")),
	}
}

// Handle executes one command message and returns the reply text.
func (c *Commands) Handle(_ context.Context, msg *tgbotapi.Message) string {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	unlock := c.locker.Lock(chatID)
	defer unlock()
	state := c.store.Get(chatID)

	c.logger.Info("command", slog.String("chat_id", chatID), slog.String("command", command))

	switch command {
	case "start", "help":
		return helpText
	case "new":
		state.ClearHistory()
		return "Started a new conversation."
	case "model":
		return c.selectModel(state, args)
	case "system":
		if args == "" {
			state.SystemInstruction = ""
			return "System instruction cleared."
		}
		state.SystemInstruction = args
		return "System instruction set."
	case "search":
		return c.toggleTool(state, session.ToolSearch, args, "Search grounding")
	case "browse":
		return c.toggleTool(state, session.ToolBrowse, args, "Browse")
	case "thinking":
		enabled, err := parseOnOff(args)
		if err != nil {
			return "Usage: /thinking on|off"
		}
		state.ThinkingEnabled = enabled
		return fmt.Sprintf("Thinking notice %s.", onOff(enabled))
	case "tokens":
		return fmt.Sprintf("Cumulative tokens this conversation: %d", state.TotalTokens)
	default:
		return "Unknown command. Try /help."
	}
}

func (c *Commands) selectModel(state *session.State, ref string) string {
	if ref == "" {
		return "Usage: /model <name>\n\n" + c.modelList()
	}
	entry, err := c.catalog.Resolve(ref)
	if err != nil {
		return fmt.Sprintf("Unknown model %q.\n\n%s", ref, c.modelList())
	}
	state.ModelID = entry.ID
	return fmt.Sprintf("Model set to %s.", entry.DisplayName)
}

func (c *Commands) modelList() string {
	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, entry := range c.catalog.List() {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", entry.ID, entry.DisplayName))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Commands) toggleTool(state *session.State, tool, args, label string) string {
	enabled, err := parseOnOff(args)
	if err != nil {
		return fmt.Sprintf("Usage: /%s on|off", tool)
	}
	state.SetTool(tool, enabled)
	return fmt.Sprintf("%s %s.", label, onOff(enabled))
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off")
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
