package handlers

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// EventKind classifies an inbound update.
type EventKind int

// Event kinds handled by the Router.
const (
	EventUnknown EventKind = iota
	EventStart
	EventHelp
	EventContact
	EventText
	EventFile
	EventSearch
	EventSentiment
)

var eventNames = map[EventKind]string{
	EventUnknown:   "unknown",
	EventStart:     "start",
	EventHelp:      "help",
	EventContact:   "contact",
	EventText:      "text",
	EventFile:      "file",
	EventSearch:    "websearch",
	EventSentiment: "sentiment",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

var commandKinds = map[string]EventKind{
	"start":     EventStart,
	"help":      EventHelp,
	"websearch": EventSearch,
	"sentiment": EventSentiment,
}

// Command is a parsed bot command such as "/websearch@relay_bot golang".
type Command struct {
	Name   string // lower-cased, without the slash
	Target string // bot username after '@', empty if absent
	Args   string // arguments joined by single spaces
}

// maxCommandLength is the longest command name Telegram accepts.
const maxCommandLength = 32

// ParseCommand parses text that starts with a bot command: a '/' followed
// directly by 1 to 32 letters, digits or underscores, optionally suffixed
// with "@botname". Text such as "/usr/bin" or "/ hello" is not a command.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	fields := strings.Fields(text)
	name, target, hasTarget := strings.Cut(fields[0][1:], "@")
	if !isCommandWord(name, maxCommandLength) {
		return Command{}, false
	}
	if hasTarget && !isCommandWord(target, 0) {
		return Command{}, false
	}
	return Command{
		Name:   strings.ToLower(name),
		Target: target,
		Args:   strings.Join(fields[1:], " "),
	}, true
}

// isCommandWord reports whether s is non-empty and made of ASCII letters,
// digits and underscores. maxLen of 0 means no length limit.
func isCommandWord(s string, maxLen int) bool {
	if s == "" || (maxLen > 0 && len(s) > maxLen) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Classify maps an update to the event it represents.
func Classify(update *models.Update) EventKind {
	if update == nil || update.Message == nil {
		return EventUnknown
	}
	msg := update.Message

	switch {
	case msg.Contact != nil:
		return EventContact
	case msg.Document != nil || len(msg.Photo) > 0:
		return EventFile
	}

	if cmd, ok := ParseCommand(msg.Text); ok {
		if kind, known := commandKinds[cmd.Name]; known {
			return kind
		}
		return EventUnknown
	}

	if strings.TrimSpace(msg.Text) != "" {
		return EventText
	}
	return EventUnknown
}
