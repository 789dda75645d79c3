package handlers

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Command
		ok   bool
	}{
		{"/start", Command{Name: "start"}, true},
		{"/WebSearch   golang   generics ", Command{Name: "websearch", Args: "golang generics"}, true},
		{"/sentiment@relay_bot I love it", Command{Name: "sentiment", Target: "relay_bot", Args: "I love it"}, true},
		{"  /help", Command{Name: "help"}, true},
		{"hello /start", Command{}, false},
		{"/", Command{}, false},
		{"/@relay_bot", Command{}, false},
		{"/ hello", Command{}, false},
		{"/usr/bin is where binaries live?", Command{}, false},
		{"/start@", Command{}, false},
		{"/start@relay-bot", Command{}, false},
		{"/" + strings.Repeat("a", 32), Command{Name: strings.Repeat("a", 32)}, true},
		{"/" + strings.Repeat("a", 33), Command{}, false},
		{"/cmd_2 x", Command{Name: "cmd_2", Args: "x"}, true},
		{"", Command{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update *models.Update
		want   EventKind
	}{
		{"nil update", nil, EventUnknown},
		{"no message", &models.Update{}, EventUnknown},
		{"start", &models.Update{Message: textMessage("/start")}, EventStart},
		{"start with bot name", &models.Update{Message: textMessage("/start@relay_bot")}, EventStart},
		{"help", &models.Update{Message: textMessage("/help")}, EventHelp},
		{"websearch", &models.Update{Message: textMessage("/websearch go")}, EventSearch},
		{"sentiment", &models.Update{Message: textMessage("/sentiment")}, EventSentiment},
		{"unknown command", &models.Update{Message: textMessage("/frobnicate")}, EventUnknown},
		{"text", &models.Update{Message: textMessage("hello")}, EventText},
		{"text starting with a path", &models.Update{Message: textMessage("/usr/bin is where binaries live?")}, EventText},
		{"slash then space", &models.Update{Message: textMessage("/ hello")}, EventText},
		{"blank text", &models.Update{Message: textMessage("   ")}, EventUnknown},
		{"contact", &models.Update{Message: &models.Message{Contact: &models.Contact{PhoneNumber: "+1"}}}, EventContact},
		{"document", &models.Update{Message: &models.Message{Document: &models.Document{FileID: "d"}}}, EventFile},
		{"photo", &models.Update{Message: &models.Message{Photo: []models.PhotoSize{{FileID: "p"}}, Caption: "/start"}}, EventFile},
		{"sticker", &models.Update{Message: &models.Message{Sticker: &models.Sticker{FileID: "s"}}}, EventUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.update); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventKindString(t *testing.T) {
	t.Parallel()

	if EventSearch.String() != "websearch" || EventKind(99).String() != "unknown" {
		t.Fatalf("unexpected names: %q %q", EventSearch.String(), EventKind(99).String())
	}
}
