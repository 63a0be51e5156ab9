package mongostore

import (
	"context"
	"time"

	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ProjectStore
// ============================================================================

func (s *Store) CreateProject(ctx context.Context, project *model.Project) error {
	return insertOne(ctx, s.col(ColProjects), project)
}

func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return findOne[model.Project](ctx, s.col(ColProjects), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListProjects(ctx context.Context, filter storage.ProjectFilter) ([]*model.Project, error) {
	query := bson.D{}
	if filter.Creator != "" {
		query = append(query, bson.E{Key: "user_created", Value: filter.Creator})
	}
	if filter.EditorEmail != "" {
		query = append(query, bson.E{Key: "editor_email", Value: filter.EditorEmail})
	}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}
	return findMany[model.Project](ctx, s.col(ColProjects), query, opts)
}

func (s *Store) UpdateProjectStatus(ctx context.Context, id string, status model.ProjectStatus, pct int) error {
	return updateFields(ctx, s.col(ColProjects), id, bson.D{
		{Key: "status", Value: status},
		{Key: "completion_percentage", Value: pct},
		{Key: "updated_at", Value: time.Now()},
	})
}

// AppendVideoResponse 追加一条视频成果，不影响已有条目
func (s *Store) AppendVideoResponse(ctx context.Context, id string, resp model.VideoResponse) error {
	res, err := s.col(ColProjects).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "responses", Value: resp}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetProjectYouTube 记录 YouTube 发布结果并置状态为 published
func (s *Store) SetProjectYouTube(ctx context.Context, id string, yt *model.YouTubeUpload) error {
	return updateFields(ctx, s.col(ColProjects), id, bson.D{
		{Key: "youtube", Value: yt},
		{Key: "status", Value: model.StatusPublished},
		{Key: "completion_percentage", Value: 100},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColProjects), id)
}
