package model

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	NotifyRequestCreated    NotificationType = "request_created"
	NotifyRequestApproved   NotificationType = "request_approved"
	NotifyRequestRejected   NotificationType = "request_rejected"
	NotifyResponseSubmitted NotificationType = "response_submitted"
	NotifyReviewSubmitted   NotificationType = "review_submitted"
	NotifyYouTubePublished  NotificationType = "youtube_published"
	NotifyGeneral           NotificationType = "general"
)

// Notification 站内通知
type Notification struct {
	ID             string           `json:"id" bson:"_id"`
	RecipientEmail string           `json:"recipient_email" bson:"recipient_email"`
	Type           NotificationType `json:"type" bson:"type"`
	Title          string           `json:"title" bson:"title"`
	Body           string           `json:"body" bson:"body"`
	ProjectID      string           `json:"project_id,omitempty" bson:"project_id,omitempty"`
	Read           bool             `json:"read" bson:"read"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
}
