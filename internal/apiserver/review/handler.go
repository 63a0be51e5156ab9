// Package review 评价领域 - HTTP 处理
//
// 创作者对已完成项目提交评价；提交时关闭项目（除非显式要求保持打开），
// 并全量重算剪辑师的平均评分（算术平均，保留一位小数）。
package review

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// Store 评价领域需要的存储接口
type Store interface {
	storage.ReviewStore
	GetProject(ctx context.Context, id string) (*model.Project, error)
	UpdateProjectStatus(ctx context.Context, id string, status model.ProjectStatus, pct int) error
	UpdateUserRating(ctx context.Context, email string, rating float64, totalReviews int) error
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Handler 评价 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建评价处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册评价相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /reviewApi/submit-review", auth.CreatorOnly(h.Submit))
	mux.HandleFunc("GET /reviewApi/reviews", h.List)
}

type submitRequest struct {
	ProjectID string `json:"project_id"`
	Rating    int    `json:"rating"`
	Comments  string `json:"comments"`
	// 默认 true：提交评价即关闭项目
	CloseProject *bool `json:"close_project"`
}

// Submit 提交评价
// POST /reviewApi/submit-review
//
// 项目必须处于 completed；closed 项目或已有评价的项目返回 409。
// 评价落库后项目转 closed（close_project=false 时跳过），
// 然后重算剪辑师的 rating/total_reviews。
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if err := model.ValidateRating(req.Rating); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.UserCreated != user.Email {
		writeError(w, http.StatusForbidden, "only the project creator can submit a review")
		return
	}
	if project.Status == model.StatusClosed {
		writeError(w, http.StatusConflict, "project is already closed")
		return
	}
	if project.Status != model.StatusCompleted && project.Status != model.StatusPublished {
		writeError(w, http.StatusConflict, "project must be completed before review")
		return
	}
	if project.EditorEmail == "" {
		writeError(w, http.StatusConflict, "project has no editor to review")
		return
	}

	// 一个项目只允许一条评价
	existing, err := h.store.GetReviewByProject(r.Context(), project.ID)
	if err != nil {
		log.Printf("[review] GetReviewByProject error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to check existing review")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "project already reviewed")
		return
	}

	review := &model.Review{
		ID:              generateID("rev"),
		ProjectID:       project.ID,
		EditorEmail:     project.EditorEmail,
		CreatorUsername: user.Email,
		Rating:          req.Rating,
		Comments:        strings.TrimSpace(req.Comments),
		CreatedAt:       time.Now(),
	}
	if err := h.store.CreateReview(r.Context(), review); err != nil {
		log.Printf("[review] CreateReview error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save review")
		return
	}

	closeProject := req.CloseProject == nil || *req.CloseProject
	if closeProject {
		if err := h.store.UpdateProjectStatus(r.Context(), project.ID, model.StatusClosed, 100); err != nil {
			log.Printf("[review] close project %s failed: %v", project.ID, err)
		}
	}

	// 全量重算剪辑师评分
	reviews, err := h.store.ListReviewsByEditor(r.Context(), project.EditorEmail)
	if err != nil {
		log.Printf("[review] ListReviewsByEditor error: %v", err)
	} else {
		mean := model.MeanRating(reviews)
		if err := h.store.UpdateUserRating(r.Context(), project.EditorEmail, mean, len(reviews)); err != nil {
			log.Printf("[review] UpdateUserRating error: %v", err)
		}
	}

	h.notify(r.Context(), project.EditorEmail, review)

	log.Printf("[review] %s reviewed project %s (rating=%d, closed=%v)",
		user.Email, project.ID, req.Rating, closeProject)
	writeJSON(w, http.StatusCreated, review)
}

// List 列出剪辑师收到的评价
// GET /reviewApi/reviews?editor=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	editor := r.URL.Query().Get("editor")
	if editor == "" {
		editor = auth.GetAuthUser(r.Context()).Email
	}

	reviews, err := h.store.ListReviewsByEditor(r.Context(), editor)
	if err != nil {
		log.Printf("[review] ListReviewsByEditor error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
		"rating":  model.MeanRating(reviews),
	})
}

// notify 写入站内通知，失败仅记日志
func (h *Handler) notify(ctx context.Context, recipient string, review *model.Review) {
	n := &model.Notification{
		ID:             generateID("ntf"),
		RecipientEmail: recipient,
		Type:           model.NotifyReviewSubmitted,
		Title:          "New review received",
		Body:           review.CreatorUsername + " rated your work",
		ProjectID:      review.ProjectID,
		CreatedAt:      time.Now(),
	}
	if err := h.store.CreateNotification(ctx, n); err != nil {
		log.Printf("[review] notify %s failed: %v", recipient, err)
	}
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
