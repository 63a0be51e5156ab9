package model

import "time"

// MessageType 聊天消息类型
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
)

// ChatMessage 项目内的聊天消息
type ChatMessage struct {
	ID        string      `json:"id" bson:"_id"`
	ProjectID string      `json:"project_id" bson:"project_id"`
	Message   string      `json:"message" bson:"message"`
	Sender    string      `json:"sender" bson:"sender"`
	Type      MessageType `json:"message_type" bson:"message_type"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
