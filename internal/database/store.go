package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations used by the bot. Implementations
// must be safe for concurrent use.
type Store interface {
	// Ping checks the connection to the backing store.
	Ping(ctx context.Context) error

	// UpsertUserProfile creates or updates the profile keyed by ChatID. The
	// phone number of an existing profile is left untouched.
	UpsertUserProfile(ctx context.Context, profile *UserProfile) error

	// SetPhoneNumber merges a phone number into the profile for chatID,
	// creating the profile if it does not exist yet.
	SetPhoneNumber(ctx context.Context, chatID int64, phone string) error

	// GetUserProfile returns the profile for chatID, or nil, nil if none exists.
	GetUserProfile(ctx context.Context, chatID int64) (*UserProfile, error)

	// SaveChatTurn appends a chat turn.
	SaveChatTurn(ctx context.Context, turn *ChatTurn) error

	// SaveFileRecord appends a file record.
	SaveFileRecord(ctx context.Context, record *FileRecord) error

	// RunMaintenance performs backend housekeeping (VACUUM on SQLite).
	RunMaintenance(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// sqlxStore implements Store on SQLite through sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore returns a Store backed by a connected, migrated sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store", "driver", "sqlite"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return persistenceErr("ping", s.db.PingContext(ctx))
}

func (s *sqlxStore) UpsertUserProfile(ctx context.Context, profile *UserProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `
		INSERT INTO user_profiles (chat_id, display_name, username, phone_number, created_at, updated_at)
		VALUES (:chat_id, :display_name, :username, :phone_number, :created_at, :updated_at)
		ON CONFLICT (chat_id) DO UPDATE SET
			display_name = excluded.display_name,
			username     = excluded.username,
			updated_at   = excluded.updated_at;
	`
	if _, err := s.db.NamedExecContext(ctx, query, profile); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user profile", "chat_id", profile.ChatID, "error", err)
		return persistenceErr("upsert user profile", fmt.Errorf("chat %d: %w", profile.ChatID, err))
	}

	s.logger.DebugContext(ctx, "User profile upserted", "chat_id", profile.ChatID)
	return nil
}

func (s *sqlxStore) SetPhoneNumber(ctx context.Context, chatID int64, phone string) error {
	if chatID == 0 {
		return fmt.Errorf("%w: chat_id cannot be zero", ErrInvalidRecord)
	}
	if phone == "" {
		return fmt.Errorf("%w: phone number cannot be empty", ErrInvalidRecord)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO user_profiles (chat_id, phone_number, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id) DO UPDATE SET
			phone_number = excluded.phone_number,
			updated_at   = excluded.updated_at;
	`
	if _, err := s.db.ExecContext(ctx, query, chatID, phone, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error saving phone number", "chat_id", chatID, "error", err)
		return persistenceErr("set phone number", fmt.Errorf("chat %d: %w", chatID, err))
	}

	s.logger.DebugContext(ctx, "Phone number saved", "chat_id", chatID)
	return nil
}

func (s *sqlxStore) GetUserProfile(ctx context.Context, chatID int64) (*UserProfile, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("%w: chat_id cannot be zero", ErrInvalidRecord)
	}

	var profile UserProfile
	query := `SELECT id, created_at, updated_at, chat_id, display_name, username, phone_number
	          FROM user_profiles WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &profile, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user profile found", "chat_id", chatID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user profile", "chat_id", chatID, "error", err)
		return nil, persistenceErr("get user profile", fmt.Errorf("chat %d: %w", chatID, err))
	}

	return &profile, nil
}

func (s *sqlxStore) SaveChatTurn(ctx context.Context, turn *ChatTurn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_turns (chat_id, user_message, bot_response, created_at)
		VALUES (:chat_id, :user_message, :bot_response, :created_at);
	`
	result, err := s.db.NamedExecContext(ctx, query, turn)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving chat turn", "chat_id", turn.ChatID, "error", err)
		return persistenceErr("save chat turn", fmt.Errorf("chat %d: %w", turn.ChatID, err))
	}

	if id, err := result.LastInsertId(); err == nil {
		turn.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving chat turn", "chat_id", turn.ChatID, "error", err)
	}

	s.logger.DebugContext(ctx, "Chat turn saved", "chat_id", turn.ChatID, "turn_id", turn.ID)
	return nil
}

func (s *sqlxStore) SaveFileRecord(ctx context.Context, record *FileRecord) error {
	if err := validateFile(record); err != nil {
		return err
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO file_records (chat_id, file_id, file_name, file_type, file_size, description, uploaded_at)
		VALUES (:chat_id, :file_id, :file_name, :file_type, :file_size, :description, :uploaded_at);
	`
	result, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving file record", "file_name", record.FileName, "error", err)
		return persistenceErr("save file record", fmt.Errorf("file %q: %w", record.FileName, err))
	}

	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}

	s.logger.DebugContext(ctx, "File record saved", "chat_id", record.ChatID, "file_name", record.FileName, "record_id", record.ID)
	return nil
}

// RunMaintenance runs VACUUM. SQLite refuses VACUUM inside a transaction, so it
// is executed directly on the pool.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return persistenceErr("vacuum", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return persistenceErr("vacuum", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

func (s *sqlxStore) Close(_ context.Context) error {
	CloseDB(s.db)
	return nil
}
