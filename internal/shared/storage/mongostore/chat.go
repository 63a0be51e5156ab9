package mongostore

import (
	"context"
	"time"

	"zensync/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ChatStore
// ============================================================================

func (s *Store) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	return insertOne(ctx, s.col(ColChatMessages), msg)
}

// ListChatMessages 返回项目内 since 之后的消息，按时间升序
func (s *Store) ListChatMessages(ctx context.Context, projectID string, since time.Time, limit int) ([]*model.ChatMessage, error) {
	query := bson.D{{Key: "project_id", Value: projectID}}
	if !since.IsZero() {
		query = append(query, bson.E{Key: "created_at", Value: bson.D{{Key: "$gt", Value: since}}})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return findMany[model.ChatMessage](ctx, s.col(ColChatMessages), query, opts)
}
