package model

import (
	"fmt"
	"time"
)

// ProjectStatus 项目状态
//
// 状态与进度分离：状态是枚举，完成百分比是独立数值字段，
// 服务端在 CanTransitionTo / ValidPercentage 中校验两者一致。
type ProjectStatus string

const (
	StatusDraft        ProjectStatus = "draft"
	StatusUnassigned   ProjectStatus = "unassigned"
	StatusAssigned     ProjectStatus = "assigned"
	StatusInProgress25 ProjectStatus = "in_progress_25"
	StatusInProgress50 ProjectStatus = "in_progress_50"
	StatusInProgress75 ProjectStatus = "in_progress_75"
	StatusCompleted    ProjectStatus = "completed"
	StatusClosed       ProjectStatus = "closed"
	StatusPublished    ProjectStatus = "published"
)

// statusLabels 前端展示用的状态文案
var statusLabels = map[ProjectStatus]string{
	StatusDraft:        "Draft",
	StatusUnassigned:   "Unassigned",
	StatusAssigned:     "Assigned",
	StatusInProgress25: "Just started",
	StatusInProgress50: "Good progress",
	StatusInProgress75: "Almost there",
	StatusCompleted:    "Completed",
	StatusClosed:       "Closed",
	StatusPublished:    "Published",
}

// statusOrder 状态推进顺序（closed/published 为终态分支）
var statusOrder = map[ProjectStatus]int{
	StatusDraft:        0,
	StatusUnassigned:   0,
	StatusAssigned:     1,
	StatusInProgress25: 2,
	StatusInProgress50: 3,
	StatusInProgress75: 4,
	StatusCompleted:    5,
	StatusClosed:       6,
	StatusPublished:    6,
}

// Label 返回状态的展示文案
func (s ProjectStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid 是否为已知状态
func (s ProjectStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Terminal closed 之后不允许任何状态变更
func (s ProjectStatus) Terminal() bool {
	return s == StatusClosed
}

// CanTransitionTo 校验状态迁移是否合法
//
// 允许沿顺序向前推进（可跳级），不允许回退，closed 阻断一切变更。
// published 作为目标状态只在 YouTube 发布流程出现，
// 状态接口在调用本方法前已将其拒绝。
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) error {
	if !next.Valid() {
		return fmt.Errorf("unknown status %q", next)
	}
	if s.Terminal() {
		return fmt.Errorf("project is closed, status can no longer change")
	}
	if s == next {
		return nil
	}
	if statusOrder[next] < statusOrder[s] {
		return fmt.Errorf("cannot move status backwards from %q to %q", s, next)
	}
	return nil
}

// ValidPercentage 校验完成百分比与状态是否一致
func (s ProjectStatus) ValidPercentage(pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("completion percentage %d out of range", pct)
	}
	var want int
	switch s {
	case StatusDraft, StatusUnassigned, StatusAssigned:
		want = 0
	case StatusInProgress25:
		want = 25
	case StatusInProgress50:
		want = 50
	case StatusInProgress75:
		want = 75
	case StatusCompleted, StatusClosed, StatusPublished:
		want = 100
	default:
		return fmt.Errorf("unknown status %q", s)
	}
	if pct != want {
		return fmt.Errorf("completion percentage %d does not match status %q (want %d)", pct, s, want)
	}
	return nil
}

// Percentage 返回状态对应的完成百分比
func (s ProjectStatus) Percentage() int {
	switch s {
	case StatusInProgress25:
		return 25
	case StatusInProgress50:
		return 50
	case StatusInProgress75:
		return 75
	case StatusCompleted, StatusClosed, StatusPublished:
		return 100
	default:
		return 0
	}
}

// VideoResponse 剪辑师提交的视频成果
type VideoResponse struct {
	Description string    `json:"description" bson:"description"`
	VideoURL    string    `json:"video_url" bson:"video_url"`
	SubmittedBy string    `json:"submitted_by" bson:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at" bson:"submitted_at"`
}

// YouTubeUpload 发布到 YouTube 的结果
type YouTubeUpload struct {
	VideoID    string    `json:"video_id" bson:"video_id"`
	URL        string    `json:"url" bson:"url"`
	UploadedBy string    `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Project 视频项目
type Project struct {
	ID           string        `json:"id" bson:"_id"`
	Title        string        `json:"title" bson:"title"`
	Description  string        `json:"description" bson:"description"`
	Tags         []string      `json:"tags" bson:"tags"`
	VideoURL     string        `json:"video_url" bson:"video_url"`
	ThumbnailURL string        `json:"thumbnail_url" bson:"thumbnail_url"`
	EditorEmail  string        `json:"editor_email" bson:"editor_email"`
	Status       ProjectStatus `json:"status" bson:"status"`
	StatusLabel  string        `json:"status_label" bson:"-"`

	CompletionPercentage int        `json:"completion_percentage" bson:"completion_percentage"`
	Deadline             *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`

	// 项目归属创作者的 email
	UserCreated string `json:"user_created" bson:"user_created"`

	Responses []VideoResponse `json:"responses" bson:"responses"`

	YouTube *YouTubeUpload `json:"youtube,omitempty" bson:"youtube,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Assigned 项目是否已有剪辑师
func (p *Project) Assigned() bool { return p.EditorEmail != "" }

// Assignable 是否还能接受访问请求
func (p *Project) Assignable() bool {
	return !p.Assigned() && (p.Status == StatusUnassigned || p.Status == StatusDraft)
}
