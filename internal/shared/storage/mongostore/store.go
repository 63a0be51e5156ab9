// Package mongostore 实现基于 MongoDB 的 storage.Store
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers          = "usersCollection"
	ColProjects       = "projectsCollection"
	ColAccessRequests = "accessRequestsCollection"
	ColReviews        = "reviewsCollection"
	ColChatMessages   = "chat_messages"
	ColNotifications  = "notifications"
)

// Store 实现 storage.Store 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	// 副本集部署下为 true，ApproveAccessRequest 走多文档事务
	txnSupported bool
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "zensync"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db, txnSupported: detectTxnSupport(ctx, client)}

	// 创建索引
	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: mongostore: ensure indexes failed: %v", err)
	}

	return s, nil
}

// detectTxnSupport 探测部署是否支持多文档事务（需要副本集/分片集群）
func detectTxnSupport(ctx context.Context, client *mongo.Client) bool {
	var result bson.M
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&result)
	if err != nil {
		return false
	}
	_, ok := result["setName"]
	return ok
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ensureIndexes 创建所有必要的索引
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col     string
		keys    bson.D
		unique  bool
		partial bson.D
	}

	indexes := []idx{
		// users
		{col: ColUsers, keys: bson.D{{Key: "email", Value: 1}}, unique: true},
		{col: ColUsers, keys: bson.D{{Key: "user_type", Value: 1}}},

		// projects
		{col: ColProjects, keys: bson.D{{Key: "user_created", Value: 1}}},
		{col: ColProjects, keys: bson.D{{Key: "editor_email", Value: 1}}},
		{col: ColProjects, keys: bson.D{{Key: "status", Value: 1}}},
		{col: ColProjects, keys: bson.D{{Key: "created_at", Value: -1}}},

		// access_requests
		// 唯一部分索引：同一剪辑师对同一项目最多一个 pending 请求，
		// 关闭并发提交下的重复请求竞争
		{
			col:     ColAccessRequests,
			keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "editor_email", Value: 1}},
			unique:  true,
			partial: bson.D{{Key: "status", Value: "pending"}},
		},
		{col: ColAccessRequests, keys: bson.D{{Key: "project_id", Value: 1}}},
		{col: ColAccessRequests, keys: bson.D{{Key: "editor_email", Value: 1}}},

		// reviews
		{col: ColReviews, keys: bson.D{{Key: "editor_email", Value: 1}}},
		{col: ColReviews, keys: bson.D{{Key: "project_id", Value: 1}}},

		// chat_messages
		{col: ColChatMessages, keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}}},

		// notifications
		{col: ColNotifications, keys: bson.D{{Key: "recipient_email", Value: 1}, {Key: "created_at", Value: -1}}},
		{col: ColNotifications, keys: bson.D{{Key: "read", Value: 1}}},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		opts := options.Index()
		if i.unique {
			opts = opts.SetUnique(true)
		}
		if i.partial != nil {
			opts = opts.SetPartialFilterExpression(i.partial)
		}
		if i.unique || i.partial != nil {
			model.Options = opts
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}
