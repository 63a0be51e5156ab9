package chat

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
)

// Handler 聊天 REST 处理器（历史拉取 + 不走 WebSocket 的发送）
type Handler struct {
	store   Store
	gateway *Gateway
}

// NewHandler 创建聊天处理器；gateway 可为 nil（仅 REST，不实时扇出）
func NewHandler(store Store, gateway *Gateway) *Handler {
	return &Handler{store: store, gateway: gateway}
}

// RegisterRoutes 注册聊天相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /chatApi/messages", h.List)
	mux.HandleFunc("POST /chatApi/messages", h.Send)
}

type sendRequest struct {
	ProjectID   string `json:"project_id"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
}

// List 拉取项目聊天历史，时间升序
// GET /chatApi/messages?project=&since=<RFC3339>&limit=100
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	projectID := r.URL.Query().Get("project")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	project, err := h.store.GetProject(r.Context(), projectID)
	if err != nil || project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.UserCreated != user.Email && project.EditorEmail != user.Email {
		writeError(w, http.StatusForbidden, "not a project participant")
		return
	}

	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		since, err = time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	messages, err := h.store.ListChatMessages(r.Context(), projectID, since, limit)
	if err != nil {
		log.Printf("[chat] ListChatMessages error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// Send 通过 REST 发送消息（与 WebSocket 落同一集合，并经网关扇出）
// POST /chatApi/messages
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Message)
	if req.ProjectID == "" || text == "" {
		writeError(w, http.StatusBadRequest, "project_id and message are required")
		return
	}
	msgType := model.MessageType(req.MessageType)
	if msgType == "" {
		msgType = model.MessageText
	}
	if msgType != model.MessageText && msgType != model.MessageSystem {
		writeError(w, http.StatusBadRequest, "message_type must be text or system")
		return
	}

	project, err := h.store.GetProject(r.Context(), req.ProjectID)
	if err != nil || project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.UserCreated != user.Email && project.EditorEmail != user.Email {
		writeError(w, http.StatusForbidden, "not a project participant")
		return
	}

	msg := &model.ChatMessage{
		ID:        generateID("msg"),
		ProjectID: req.ProjectID,
		Message:   text,
		Sender:    user.Email,
		Type:      msgType,
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateChatMessage(r.Context(), msg); err != nil {
		log.Printf("[chat] CreateChatMessage error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	if h.gateway != nil {
		h.gateway.publish(r.Context(), msg)
	}

	writeJSON(w, http.StatusCreated, msg)
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
