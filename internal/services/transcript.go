package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindwellhq/mindwell-backend/internal/database"
)

// TranscriptEntry is one archived chatbot exchange. The archive is an audit
// trail only; chatbot sessions themselves never touch MongoDB.
type TranscriptEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Role      string             `bson:"role" json:"role"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// TranscriptsEnabled reports whether the archive has a backing store.
func TranscriptsEnabled() bool {
	return database.MongoDB != nil
}

// EnsureTranscriptIndexes configures indexes for the chatbot_transcripts
// collection. Called on startup after Mongo has connected.
func EnsureTranscriptIndexes(ctx context.Context) error {
	col := database.MongoDB.Collection("chatbot_transcripts")

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_session_created"),
	})
	return err
}

// ArchiveTranscriptAsync persists one exchange to MongoDB in the background.
// Fire-and-forget: the chatbot never blocks on, or fails because of, the
// archive.
func ArchiveTranscriptAsync(sessionID, role, message string) {
	if !TranscriptsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		col := database.MongoDB.Collection("chatbot_transcripts")
		_, _ = col.InsertOne(ctx, TranscriptEntry{
			SessionID: sessionID,
			Role:      role,
			Message:   message,
			CreatedAt: time.Now().UTC(),
		})
	}()
}
