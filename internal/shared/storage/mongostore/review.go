package mongostore

import (
	"context"

	"zensync/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ReviewStore
// ============================================================================

func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	return insertOne(ctx, s.col(ColReviews), review)
}

func (s *Store) ListReviewsByEditor(ctx context.Context, editorEmail string) ([]*model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "editor_email", Value: editorEmail}}, opts)
}

func (s *Store) GetReviewByProject(ctx context.Context, projectID string) (*model.Review, error) {
	return findOne[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "project_id", Value: projectID}})
}
