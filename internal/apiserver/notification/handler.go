// Package notification 站内通知 - HTTP 处理
package notification

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// Handler 通知 HTTP 处理器
type Handler struct {
	store storage.NotificationStore
}

// NewHandler 创建通知处理器
func NewHandler(store storage.NotificationStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册通知相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /notificationApi/notifications", h.List)
	mux.HandleFunc("POST /notificationApi/notifications", h.Create)
	mux.HandleFunc("PUT /notificationApi/notifications/{id}/read", h.MarkRead)
}

type createRequest struct {
	RecipientEmail string `json:"recipient_email"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	ProjectID      string `json:"project_id"`
}

// List 当前用户的通知，新的在前
// GET /notificationApi/notifications?unread=true&limit=50
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	notifications, err := h.store.ListNotifications(r.Context(), user.Email, unreadOnly, limit)
	if err != nil {
		log.Printf("[notification] ListNotifications error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// Create 创建通知
// POST /notificationApi/notifications
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecipientEmail == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "recipient_email and title are required")
		return
	}

	typ := model.NotificationType(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = model.NotifyGeneral
	}

	n := &model.Notification{
		ID:             generateID("ntf"),
		RecipientEmail: req.RecipientEmail,
		Type:           typ,
		Title:          req.Title,
		Body:           req.Body,
		ProjectID:      req.ProjectID,
		CreatedAt:      time.Now(),
	}
	if err := h.store.CreateNotification(r.Context(), n); err != nil {
		log.Printf("[notification] CreateNotification error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	log.Printf("[notification] %s -> %s (%s)", user.Email, n.RecipientEmail, n.Type)
	writeJSON(w, http.StatusCreated, n)
}

// MarkRead 标记已读（仅收件人可操作）
// PUT /notificationApi/notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	if err := h.store.MarkNotificationRead(r.Context(), id, user.Email); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		log.Printf("[notification] MarkNotificationRead error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "marked read"})
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
