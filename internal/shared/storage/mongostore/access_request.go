package mongostore

import (
	"context"
	"fmt"
	"time"

	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// AccessRequestStore
// ============================================================================

func (s *Store) CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error {
	// 唯一部分索引 (project_id, editor_email, status=pending)
	// 把并发重复提交转换为 ErrDuplicate
	return insertOne(ctx, s.col(ColAccessRequests), req)
}

func (s *Store) GetAccessRequest(ctx context.Context, id string) (*model.AccessRequest, error) {
	return findOne[model.AccessRequest](ctx, s.col(ColAccessRequests), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListAccessRequestsByProject(ctx context.Context, projectID string) ([]*model.AccessRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.AccessRequest](ctx, s.col(ColAccessRequests), bson.D{{Key: "project_id", Value: projectID}}, opts)
}

func (s *Store) ListAccessRequestsByEditor(ctx context.Context, editorEmail string) ([]*model.AccessRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.AccessRequest](ctx, s.col(ColAccessRequests), bson.D{{Key: "editor_email", Value: editorEmail}}, opts)
}

// ApproveAccessRequest 批准访问请求
//
// 三个写入作为一个整体：
//  1. 项目设置 editor_email + status=assigned
//  2. 当前请求置 approved
//  3. 同项目其余 pending 请求置 rejected
//
// 副本集部署下走多文档事务；单机部署降级为有序写入，项目指派在前，
// 这样任何中途失败都不会出现"请求已批准但项目未指派"的状态。
func (s *Store) ApproveAccessRequest(ctx context.Context, req *model.AccessRequest) error {
	if s.txnSupported {
		session, err := s.client.StartSession()
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
			return nil, s.approveWrites(ctx, req)
		})
		return err
	}
	return s.approveWrites(ctx, req)
}

// approveWrites 按固定顺序执行批准涉及的写入
func (s *Store) approveWrites(ctx context.Context, req *model.AccessRequest) error {
	now := time.Now()

	// 1. 指派项目：仅当项目尚未指派时生效，并发批准只有一个成功
	res, err := s.col(ColProjects).UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: req.ProjectID},
			{Key: "editor_email", Value: ""},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "editor_email", Value: req.EditorEmail},
			{Key: "status", Value: model.StatusAssigned},
			{Key: "updated_at", Value: now},
		}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		// 项目不存在或已被其他批准抢先指派
		proj, perr := s.GetProject(ctx, req.ProjectID)
		if perr != nil || proj == nil {
			return storage.ErrNotFound
		}
		if proj.EditorEmail == req.EditorEmail {
			// 同一请求重放：项目已指派给该剪辑师，继续补齐请求状态
		} else {
			return storage.ErrConflict
		}
	}

	// 2. 当前请求置 approved
	if err := updateFields(ctx, s.col(ColAccessRequests), req.ID, bson.D{
		{Key: "status", Value: model.RequestApproved},
		{Key: "updated_at", Value: now},
	}); err != nil {
		return err
	}

	// 3. 兄弟 pending 请求全部置 rejected
	_, err = s.col(ColAccessRequests).UpdateMany(ctx,
		bson.D{
			{Key: "project_id", Value: req.ProjectID},
			{Key: "status", Value: model.RequestPending},
			{Key: "_id", Value: bson.D{{Key: "$ne", Value: req.ID}}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: model.RequestRejected},
			{Key: "updated_at", Value: now},
		}}})
	return wrapError(err)
}

// RejectAccessRequest 单文档更新，不触碰项目
func (s *Store) RejectAccessRequest(ctx context.Context, id string) error {
	return updateFields(ctx, s.col(ColAccessRequests), id, bson.D{
		{Key: "status", Value: model.RequestRejected},
		{Key: "updated_at", Value: time.Now()},
	})
}
