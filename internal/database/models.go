package database

import "time"

// UserProfile is the per-chat identity record created by /start and completed
// by a contact share. ChatID is unique.
type UserProfile struct {
	ID        int64     `db:"id"         bson:"-"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`

	ChatID      int64  `db:"chat_id"      bson:"chat_id"`
	DisplayName string `db:"display_name" bson:"first_name"`
	Username    string `db:"username"     bson:"username"`
	PhoneNumber string `db:"phone_number" bson:"phone_number,omitempty"` // Empty until shared
}

// ChatTurn is one answered text message. Turns are append-only.
type ChatTurn struct {
	ID        int64     `db:"id"         bson:"-"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`

	ChatID      int64  `db:"chat_id"      bson:"chat_id"`
	UserMessage string `db:"user_message" bson:"user_message"`
	BotResponse string `db:"bot_response" bson:"bot_response"`
}

// FileRecord describes an analysed upload. Records are append-only.
type FileRecord struct {
	ID         int64     `db:"id"          bson:"-"`
	UploadedAt time.Time `db:"uploaded_at" bson:"uploaded_at"`

	ChatID      int64  `db:"chat_id"     bson:"chat_id"`
	FileID      string `db:"file_id"     bson:"file_id"`
	FileName    string `db:"file_name"   bson:"file_name"`
	FileType    string `db:"file_type"   bson:"file_type"`
	FileSize    int64  `db:"file_size"   bson:"file_size"`
	Description string `db:"description" bson:"description"`
}
