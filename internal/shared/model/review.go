package model

import (
	"fmt"
	"math"
	"time"
)

// Review 创作者对剪辑师完成项目的评价
type Review struct {
	ID              string    `json:"id" bson:"_id"`
	ProjectID       string    `json:"project_id" bson:"project_id"`
	EditorEmail     string    `json:"editor_email" bson:"editor_email"`
	CreatorUsername string    `json:"creator_username" bson:"creator_username"`
	Rating          int       `json:"rating" bson:"rating"`
	Comments        string    `json:"comments" bson:"comments"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// ValidateRating 评分取值 1..5
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

// MeanRating 计算评分算术平均值，保留一位小数
func MeanRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}
