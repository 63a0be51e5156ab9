package mongostore

import (
	"context"

	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// NotificationStore
// ============================================================================

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	return insertOne(ctx, s.col(ColNotifications), n)
}

func (s *Store) ListNotifications(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	query := bson.D{{Key: "recipient_email", Value: recipientEmail}}
	if unreadOnly {
		query = append(query, bson.E{Key: "read", Value: false})
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return findMany[model.Notification](ctx, s.col(ColNotifications), query, opts)
}

// MarkNotificationRead 收件人校验放在过滤器里，防止读别人的通知
func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientEmail string) error {
	res, err := s.col(ColNotifications).UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "recipient_email", Value: recipientEmail},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
