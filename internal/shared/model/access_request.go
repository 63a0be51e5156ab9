package model

import "time"

// AccessRequestStatus 访问请求状态
//
// 状态机：pending -> approved | rejected，approved/rejected 为终态。
// 同一项目可同时存在多个 pending 请求，批准其中一个时其余自动 rejected。
type AccessRequestStatus string

const (
	RequestPending  AccessRequestStatus = "pending"
	RequestApproved AccessRequestStatus = "approved"
	RequestRejected AccessRequestStatus = "rejected"
)

// AccessRequest 剪辑师对项目的访问请求
type AccessRequest struct {
	ID           string              `json:"id" bson:"_id"`
	ProjectID    string              `json:"project_id" bson:"project_id"`
	EditorEmail  string              `json:"editor_email" bson:"editor_email"`
	CreatorEmail string              `json:"creator_email" bson:"creator_email"`
	Message      string              `json:"message" bson:"message"`
	Status       AccessRequestStatus `json:"status" bson:"status"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// Terminal 请求是否已处于终态
func (r *AccessRequest) Terminal() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}
