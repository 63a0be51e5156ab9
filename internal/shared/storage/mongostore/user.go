package mongostore

import (
	"context"
	"time"

	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, username, fullName string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "username", Value: username},
		{Key: "full_name", Value: fullName},
		{Key: "updated_at", Value: time.Now()},
	})
}

// UpdateUserRating 按 email 重写剪辑师的评分汇总
func (s *Store) UpdateUserRating(ctx context.Context, email string, rating float64, totalReviews int) error {
	res, err := s.col(ColUsers).UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: rating},
			{Key: "total_reviews", Value: totalReviews},
			{Key: "updated_at", Value: time.Now()},
		}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateUserYouTube 写入/覆盖 YouTube 授权信息，传 nil 表示断开连接
func (s *Store) UpdateUserYouTube(ctx context.Context, id string, yt *model.YouTubeAuth) error {
	if yt == nil {
		return updateFields(ctx, s.col(ColUsers), id, bson.D{
			{Key: "youtube.is_active", Value: false},
			{Key: "updated_at", Value: time.Now()},
		})
	}
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "youtube", Value: yt},
		{Key: "updated_at", Value: time.Now()},
	})
}

// AddPendingUpload 记录已发布但项目更新失败的视频，等待对账
func (s *Store) AddPendingUpload(ctx context.Context, id string, p model.PendingUpload) error {
	res, err := s.col(ColUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "pending_uploads", Value: p}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
