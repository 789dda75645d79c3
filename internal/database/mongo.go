package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used by the MongoDB backend.
const (
	UsersCollection        = "users"
	ChatHistoryCollection  = "chat_history"
	FileMetadataCollection = "file_metadata"
)

// mongoStore implements Store on MongoDB.
type mongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	turns  *mongo.Collection
	files  *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore connects to uri, ensures the unique chat_id index on the users
// collection and returns a Store backed by database dbName.
func NewMongoStore(ctx context.Context, uri, dbName string, logger *slog.Logger) (Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}
	if dbName == "" {
		return nil, fmt.Errorf("mongo database name cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "store", "driver", "mongo")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &mongoStore{
		client: client,
		users:  db.Collection(UsersCollection),
		turns:  db.Collection(ChatHistoryCollection),
		files:  db.Collection(FileMetadataCollection),
		logger: log,
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create chat_id index: %w", err)
	}

	log.Info("Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return persistenceErr("ping", s.client.Ping(ctx, readpref.Primary()))
}

// profileUpsert builds the update document for UpsertUserProfile.
func profileUpsert(p *UserProfile, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"chat_id":    p.ChatID,
			"first_name": p.DisplayName,
			"username":   p.Username,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
}

// phoneUpsert builds the update document for SetPhoneNumber.
func phoneUpsert(phone string, now time.Time) bson.M {
	return bson.M{
		"$set":         bson.M{"phone_number": phone, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
}

func (s *mongoStore) UpsertUserProfile(ctx context.Context, profile *UserProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	now := time.Now().UTC()
	profile.UpdatedAt = now

	_, err := s.users.UpdateOne(ctx,
		bson.M{"chat_id": profile.ChatID},
		profileUpsert(profile, now),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user profile", "chat_id", profile.ChatID, "error", err)
		return persistenceErr("upsert user profile", fmt.Errorf("chat %d: %w", profile.ChatID, err))
	}
	s.logger.DebugContext(ctx, "User profile upserted", "chat_id", profile.ChatID)
	return nil
}

func (s *mongoStore) SetPhoneNumber(ctx context.Context, chatID int64, phone string) error {
	if chatID == 0 {
		return fmt.Errorf("%w: chat_id cannot be zero", ErrInvalidRecord)
	}
	if phone == "" {
		return fmt.Errorf("%w: phone number cannot be empty", ErrInvalidRecord)
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		phoneUpsert(phone, time.Now().UTC()),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving phone number", "chat_id", chatID, "error", err)
		return persistenceErr("set phone number", fmt.Errorf("chat %d: %w", chatID, err))
	}
	return nil
}

func (s *mongoStore) GetUserProfile(ctx context.Context, chatID int64) (*UserProfile, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("%w: chat_id cannot be zero", ErrInvalidRecord)
	}

	var profile UserProfile
	err := s.users.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&profile)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, persistenceErr("get user profile", fmt.Errorf("chat %d: %w", chatID, err))
	}
	return &profile, nil
}

func (s *mongoStore) SaveChatTurn(ctx context.Context, turn *ChatTurn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	if _, err := s.turns.InsertOne(ctx, turn); err != nil {
		s.logger.ErrorContext(ctx, "Error saving chat turn", "chat_id", turn.ChatID, "error", err)
		return persistenceErr("save chat turn", fmt.Errorf("chat %d: %w", turn.ChatID, err))
	}
	return nil
}

func (s *mongoStore) SaveFileRecord(ctx context.Context, record *FileRecord) error {
	if err := validateFile(record); err != nil {
		return err
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}
	if _, err := s.files.InsertOne(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "Error saving file record", "file_name", record.FileName, "error", err)
		return persistenceErr("save file record", fmt.Errorf("file %q: %w", record.FileName, err))
	}
	return nil
}

// RunMaintenance only verifies connectivity; MongoDB compacts on its own.
func (s *mongoStore) RunMaintenance(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *mongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return persistenceErr("disconnect", err)
	}
	s.logger.Info("MongoDB connection closed successfully.")
	return nil
}
