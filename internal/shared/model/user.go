package model

import "time"

// UserType 用户类型
type UserType string

const (
	UserTypeCreator UserType = "contentCreator"
	UserTypeEditor  UserType = "editor"
)

// YouTubeAuth 创作者的 YouTube 授权信息
//
// AccessToken/RefreshToken 由 Google OAuth 回调写入，
// 过期后在上传时通过 RefreshToken 静默刷新。
type YouTubeAuth struct {
	ChannelID    string    `json:"channel_id" bson:"channel_id"`
	ChannelTitle string    `json:"channel_title" bson:"channel_title"`
	AccessToken  string    `json:"-" bson:"access_token"`
	RefreshToken string    `json:"-" bson:"refresh_token"`
	Expiry       time.Time `json:"expiry" bson:"expiry"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	ConnectedAt  time.Time `json:"connected_at" bson:"connected_at"`
}

// PendingUpload 视频已发布到 YouTube 但项目更新失败时的对账记录
type PendingUpload struct {
	ProjectID  string    `json:"project_id" bson:"project_id"`
	VideoID    string    `json:"video_id" bson:"video_id"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// User 用户（创作者或剪辑师）
type User struct {
	ID           string   `json:"id" bson:"_id"`
	Username     string   `json:"username" bson:"username"`
	Email        string   `json:"email" bson:"email"`
	PasswordHash string   `json:"-" bson:"password_hash"` // never expose in JSON
	UserType     UserType `json:"user_type" bson:"user_type"`
	FullName     string   `json:"full_name" bson:"full_name"`

	// 剪辑师评分（每次提交评价时全量重算）
	Rating       float64 `json:"rating" bson:"rating"`
	TotalReviews int     `json:"total_reviews" bson:"total_reviews"`

	YouTube        *YouTubeAuth    `json:"youtube,omitempty" bson:"youtube,omitempty"`
	PendingUploads []PendingUpload `json:"pending_uploads,omitempty" bson:"pending_uploads,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsCreator 是否为内容创作者
func (u *User) IsCreator() bool { return u.UserType == UserTypeCreator }

// IsEditor 是否为剪辑师
func (u *User) IsEditor() bool { return u.UserType == UserTypeEditor }

// YouTubeConnected 是否存在可用的 YouTube 授权
func (u *User) YouTubeConnected() bool {
	return u.YouTube != nil && u.YouTube.IsActive && u.YouTube.RefreshToken != ""
}
