package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/search"
)

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []*bot.SendMessageParams
	actions int
	files   map[string]*models.File
	linkFmt func(*models.File) string
	sendErr func(call int, p *bot.SendMessageParams) error
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.sent = append(f.sent, &cp)
	if f.sendErr != nil {
		if err := f.sendErr(len(f.sent), &cp); err != nil {
			return nil, err
		}
	}
	return &models.Message{ID: len(f.sent)}, nil
}

func (f *fakeMessenger) SendChatAction(context.Context, *bot.SendChatActionParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions++
	return true, nil
}

func (f *fakeMessenger) GetFile(_ context.Context, p *bot.GetFileParams) (*models.File, error) {
	if file, ok := f.files[p.FileID]; ok {
		return file, nil
	}
	return nil, errors.New("file not found")
}

func (f *fakeMessenger) FileDownloadLink(file *models.File) string {
	if f.linkFmt != nil {
		return f.linkFmt(file)
	}
	return "https://files.invalid/" + file.FilePath
}

func (f *fakeMessenger) messages() []*bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*bot.SendMessageParams(nil), f.sent...)
}

type fakeAI struct {
	mu          sync.Mutex
	text        string
	textErr     error
	media       string
	mediaErr    error
	textCalls   []string
	mediaCalls  []string
	mediaTypes  []string
	mediaLength []int
}

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls = append(f.textCalls, prompt)
	return f.text, f.textErr
}

func (f *fakeAI) GenerateFromMedia(_ context.Context, prompt string, data []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaCalls = append(f.mediaCalls, prompt)
	f.mediaTypes = append(f.mediaTypes, mimeType)
	f.mediaLength = append(f.mediaLength, len(data))
	return f.media, f.mediaErr
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.textCalls) + len(f.mediaCalls)
}

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
	query   string
	topN    int
}

func (f *fakeSearcher) Search(_ context.Context, query string, topN int) ([]search.Result, error) {
	f.calls++
	f.query = query
	f.topN = topN
	return f.results, f.err
}

type fakeStore struct {
	mu       sync.Mutex
	profiles map[int64]*database.UserProfile
	turns    []*database.ChatTurn
	files    []*database.FileRecord
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[int64]*database.UserProfile)}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) UpsertUserProfile(_ context.Context, p *database.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	existing, ok := s.profiles[p.ChatID]
	if !ok {
		cp := *p
		s.profiles[p.ChatID] = &cp
		return nil
	}
	existing.DisplayName = p.DisplayName
	existing.Username = p.Username
	return nil
}

func (s *fakeStore) SetPhoneNumber(_ context.Context, chatID int64, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.profiles[chatID]
	if !ok {
		p = &database.UserProfile{ChatID: chatID}
		s.profiles[chatID] = p
	}
	p.PhoneNumber = phone
	return nil
}

func (s *fakeStore) GetUserProfile(_ context.Context, chatID int64) (*database.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[chatID], nil
}

func (s *fakeStore) SaveChatTurn(_ context.Context, t *database.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.turns = append(s.turns, t)
	return nil
}

func (s *fakeStore) SaveFileRecord(_ context.Context, r *database.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.files = append(s.files, r)
	return nil
}

func (s *fakeStore) RunMaintenance(context.Context) error { return nil }
func (s *fakeStore) Close(context.Context) error          { return nil }

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, Messenger, string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type testEnv struct {
	messenger *fakeMessenger
	ai        *fakeAI
	searcher  *fakeSearcher
	store     *fakeStore
	fetcher   *fakeFetcher
	deps      HandlerDeps
}

func newTestEnv() *testEnv {
	env := &testEnv{
		messenger: &fakeMessenger{},
		ai:        &fakeAI{},
		searcher:  &fakeSearcher{},
		store:     newFakeStore(),
		fetcher:   &fakeFetcher{},
	}
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			Token:           "token",
			SendTimeout:     time.Second,
			DownloadTimeout: time.Second,
			BotInfo:         &models.User{ID: 1, Username: "relay_bot"},
		},
		Search:   config.SearchConfig{ResultCount: 3},
		Database: config.DatabaseConfig{Timeout: time.Second},
		Messages: config.DefaultMessages,
	}
	env.deps = HandlerDeps{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:       cfg,
		Store:        env.store,
		GeminiClient: env.ai,
		Searcher:     env.searcher,
		Fetcher:      env.fetcher,
	}
	return env
}

func (e *testEnv) dispatch(msg *models.Message) {
	NewRouter(e.deps).Dispatch(context.Background(), e.messenger, &models.Update{ID: 1, Message: msg})
}

func textMessage(text string) *models.Message {
	return &models.Message{
		ID:   10,
		Chat: models.Chat{ID: 100},
		From: &models.User{ID: 7, FirstName: "Ana", Username: "ana"},
		Text: text,
	}
}
