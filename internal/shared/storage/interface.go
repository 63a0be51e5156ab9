package storage

import (
	"context"
	"time"

	"zensync/internal/shared/model"
)

// ============================================================================
// 持久化存储接口（由 mongostore.Store 实现）
// ============================================================================

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, username, fullName string) error
	UpdateUserRating(ctx context.Context, email string, rating float64, totalReviews int) error
	UpdateUserYouTube(ctx context.Context, id string, yt *model.YouTubeAuth) error
	AddPendingUpload(ctx context.Context, id string, p model.PendingUpload) error
}

// ProjectFilter 项目查询过滤条件
type ProjectFilter struct {
	Creator     string
	EditorEmail string
	Status      model.ProjectStatus
	Limit       int
	Offset      int
}

// ProjectStore 项目存储接口
type ProjectStore interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*model.Project, error)
	UpdateProjectStatus(ctx context.Context, id string, status model.ProjectStatus, pct int) error
	AppendVideoResponse(ctx context.Context, id string, resp model.VideoResponse) error
	SetProjectYouTube(ctx context.Context, id string, yt *model.YouTubeUpload) error
	DeleteProject(ctx context.Context, id string) error
}

// AccessRequestStore 访问请求存储接口
//
// ApproveAccessRequest 将"项目指派 + 请求批准 + 兄弟请求拒绝"三个写入
// 作为一个整体执行（副本集下走多文档事务，单机降级为有序写入）。
type AccessRequestStore interface {
	CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error
	GetAccessRequest(ctx context.Context, id string) (*model.AccessRequest, error)
	ListAccessRequestsByProject(ctx context.Context, projectID string) ([]*model.AccessRequest, error)
	ListAccessRequestsByEditor(ctx context.Context, editorEmail string) ([]*model.AccessRequest, error)
	ApproveAccessRequest(ctx context.Context, req *model.AccessRequest) error
	RejectAccessRequest(ctx context.Context, id string) error
}

// ReviewStore 评价存储接口
type ReviewStore interface {
	CreateReview(ctx context.Context, review *model.Review) error
	ListReviewsByEditor(ctx context.Context, editorEmail string) ([]*model.Review, error)
	GetReviewByProject(ctx context.Context, projectID string) (*model.Review, error)
}

// ChatStore 聊天消息存储接口
type ChatStore interface {
	CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error
	ListChatMessages(ctx context.Context, projectID string, since time.Time, limit int) ([]*model.ChatMessage, error)
}

// NotificationStore 通知存储接口
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientEmail string) error
}

// Store 聚合接口，cmd/api-server 注入的完整存储
type Store interface {
	UserStore
	ProjectStore
	AccessRequestStore
	ReviewStore
	ChatStore
	NotificationStore
	Close() error
}
