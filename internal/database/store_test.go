package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	s := NewStore(db, nil)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func countRows(t *testing.T, s Store, table string) int {
	t.Helper()

	var n int
	if err := s.(*sqlxStore).db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestUpsertUserProfileKeepsOneRecordPerChat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.UpsertUserProfile(ctx, &UserProfile{ChatID: 42, DisplayName: "Ana", Username: "ana"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertUserProfile(ctx, &UserProfile{ChatID: 42, DisplayName: "Ana Maria", Username: "ana"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if got := countRows(t, s, "user_profiles"); got != 1 {
		t.Fatalf("user_profiles rows = %d, want 1", got)
	}

	p, err := s.GetUserProfile(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if p == nil || p.DisplayName != "Ana Maria" {
		t.Fatalf("GetUserProfile() = %+v, want display name %q", p, "Ana Maria")
	}
}

func TestSetPhoneNumberMergesIntoProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.UpsertUserProfile(ctx, &UserProfile{ChatID: 7, DisplayName: "Bo", Username: "bo"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.SetPhoneNumber(ctx, 7, "+15550100"); err != nil {
		t.Fatalf("SetPhoneNumber() error = %v", err)
	}
	// A later /start must not wipe the phone number.
	if err := s.UpsertUserProfile(ctx, &UserProfile{ChatID: 7, DisplayName: "Bob", Username: "bo"}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	p, err := s.GetUserProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if p.PhoneNumber != "+15550100" || p.DisplayName != "Bob" {
		t.Fatalf("profile = %+v", p)
	}
	if got := countRows(t, s, "user_profiles"); got != 1 {
		t.Fatalf("user_profiles rows = %d, want 1", got)
	}
}

func TestSetPhoneNumberCreatesMissingProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SetPhoneNumber(ctx, 99, "+4400"); err != nil {
		t.Fatalf("SetPhoneNumber() error = %v", err)
	}
	p, err := s.GetUserProfile(ctx, 99)
	if err != nil || p == nil {
		t.Fatalf("GetUserProfile() = %v, %v", p, err)
	}
	if p.PhoneNumber != "+4400" {
		t.Fatalf("PhoneNumber = %q", p.PhoneNumber)
	}
}

func TestGetUserProfileNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p, err := s.GetUserProfile(context.Background(), 1234)
	if err != nil || p != nil {
		t.Fatalf("GetUserProfile() = %v, %v; want nil, nil", p, err)
	}
}

func TestSaveChatTurnAppends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		turn := &ChatTurn{ChatID: 5, UserMessage: "hi", BotResponse: "hello"}
		if err := s.SaveChatTurn(ctx, turn); err != nil {
			t.Fatalf("SaveChatTurn() error = %v", err)
		}
		if turn.ID == 0 || turn.CreatedAt.IsZero() {
			t.Fatalf("turn not populated: %+v", turn)
		}
	}
	if got := countRows(t, s, "chat_turns"); got != 3 {
		t.Fatalf("chat_turns rows = %d, want 3", got)
	}
}

func TestSaveFileRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	rec := &FileRecord{
		ChatID:      5,
		FileID:      "AgAD",
		FileName:    "AgAD.jpg",
		FileType:    "image/jpeg",
		FileSize:    2048,
		Description: "a cat",
		UploadedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := s.SaveFileRecord(ctx, rec); err != nil {
		t.Fatalf("SaveFileRecord() error = %v", err)
	}
	if got := countRows(t, s, "file_records"); got != 1 {
		t.Fatalf("file_records rows = %d, want 1", got)
	}
}

func TestValidationRejectsBeforeWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	tests := []struct {
		name string
		op   func() error
	}{
		{"nil profile", func() error { return s.UpsertUserProfile(ctx, nil) }},
		{"zero chat profile", func() error { return s.UpsertUserProfile(ctx, &UserProfile{DisplayName: "x"}) }},
		{"empty phone", func() error { return s.SetPhoneNumber(ctx, 1, "") }},
		{"zero chat phone", func() error { return s.SetPhoneNumber(ctx, 0, "+1") }},
		{"zero chat turn", func() error { return s.SaveChatTurn(ctx, &ChatTurn{UserMessage: "x"}) }},
		{"nameless file", func() error { return s.SaveFileRecord(ctx, &FileRecord{ChatID: 1}) }},
	}

	for _, tt := range tests {
		if err := tt.op(); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: error = %v, want ErrInvalidRecord", tt.name, err)
		}
	}
}

func TestRunMaintenance(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.RunMaintenance(context.Background()); err != nil {
		t.Fatalf("RunMaintenance() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.RunMaintenance(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunMaintenance(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := persistenceErr("save chat turn", cause)

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "save chat turn" {
		t.Fatalf("errors.As() failed for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is() failed for %v", err)
	}
	if persistenceErr("noop", nil) != nil {
		t.Fatal("persistenceErr(nil) should be nil")
	}
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"storage.db", "storage.db"},
		{"file:storage.db?_pragma=busy_timeout(5000)", "storage.db"},
		{"file:my%20bot.db", "my bot.db"},
	}
	for _, tt := range tests {
		if got := ExtractDBNameFromPath(tt.in); got != tt.want {
			t.Errorf("ExtractDBNameFromPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyMigrationsReportsSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer CloseDB(db)

	for run := 1; run <= 2; run++ {
		version, err := ApplyMigrations(db.DB, ExtractDBNameFromPath(path))
		if err != nil {
			t.Fatalf("run %d: ApplyMigrations() error = %v", run, err)
		}
		if version != SchemaVersion {
			t.Fatalf("run %d: version = %d, want %d", run, version, SchemaVersion)
		}
	}

	var tables int
	if err := db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('user_profiles', 'chat_turns', 'file_records')"); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if tables != 3 {
		t.Fatalf("tables = %d, want 3", tables)
	}
}

func TestApplyMigrationsRejectsNilDB(t *testing.T) {
	t.Parallel()

	if _, err := ApplyMigrations(nil, "x.db"); err == nil {
		t.Fatal("ApplyMigrations(nil) succeeded")
	}
}
