// Package access 访问请求工作流 - HTTP 处理
//
// 状态机：pending -> approved | rejected。
// 批准把项目指派、请求批准、兄弟请求拒绝作为一个整体写入
// （见 storage.AccessRequestStore.ApproveAccessRequest）。
package access

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// Store 访问请求工作流需要的存储接口
type Store interface {
	storage.AccessRequestStore
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Handler 访问请求 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建访问请求处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册访问请求相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /projectApi/project/{id}/request-access", auth.EditorOnly(h.RequestAccess))
	mux.HandleFunc("GET /projectApi/access-requests", h.List)
	mux.HandleFunc("PUT /projectApi/access-requests/{id}/approve", auth.CreatorOnly(h.Approve))
	mux.HandleFunc("PUT /projectApi/access-requests/{id}/reject", auth.CreatorOnly(h.Reject))
}

type requestAccessRequest struct {
	Message string `json:"message"`
}

// RequestAccess 剪辑师请求参与项目
// POST /projectApi/project/{id}/request-access
//
// 同一剪辑师对同一项目的重复 pending 请求被唯一索引拦下，返回 409。
func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	projectID := r.PathValue("id")

	var req requestAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.store.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if !project.Assignable() {
		writeError(w, http.StatusConflict, "project is not open for access requests")
		return
	}

	now := time.Now()
	request := &model.AccessRequest{
		ID:           generateID("req"),
		ProjectID:    projectID,
		EditorEmail:  user.Email,
		CreatorEmail: project.UserCreated,
		Message:      strings.TrimSpace(req.Message),
		Status:       model.RequestPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateAccessRequest(r.Context(), request); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "you already have a pending request for this project")
			return
		}
		log.Printf("[access] CreateAccessRequest error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create access request")
		return
	}

	h.notify(r.Context(), project.UserCreated, model.NotifyRequestCreated,
		"New access request", user.Email+" wants to edit \""+project.Title+"\"", projectID)

	log.Printf("[access] Request %s created by %s for project %s", request.ID, user.Email, projectID)
	writeJSON(w, http.StatusCreated, request)
}

// List 列出访问请求
// GET /projectApi/access-requests?project=|editor=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var (
		requests []*model.AccessRequest
		err      error
	)
	switch {
	case r.URL.Query().Get("project") != "":
		projectID := r.URL.Query().Get("project")
		project, perr := h.store.GetProject(r.Context(), projectID)
		if perr != nil || project == nil {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		if project.UserCreated != user.Email {
			writeError(w, http.StatusForbidden, "not your project")
			return
		}
		requests, err = h.store.ListAccessRequestsByProject(r.Context(), projectID)
	case r.URL.Query().Get("editor") != "":
		editor := r.URL.Query().Get("editor")
		if editor != user.Email {
			writeError(w, http.StatusForbidden, "cannot list another editor's requests")
			return
		}
		requests, err = h.store.ListAccessRequestsByEditor(r.Context(), editor)
	default:
		requests, err = h.store.ListAccessRequestsByEditor(r.Context(), user.Email)
	}
	if err != nil {
		log.Printf("[access] list error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list access requests")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// Approve 批准访问请求
// PUT /projectApi/access-requests/{id}/approve
//
// 结果：项目 editor_email + status=assigned，当前请求 approved，
// 同项目其余 pending 请求 rejected。重复批准同一请求是幂等的 no-op。
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	request, err := h.store.GetAccessRequest(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get access request")
		return
	}
	if request == nil {
		writeError(w, http.StatusNotFound, "access request not found")
		return
	}
	if request.CreatorEmail != user.Email {
		writeError(w, http.StatusForbidden, "only the project creator can approve")
		return
	}

	switch request.Status {
	case model.RequestApproved:
		// 重复批准：幂等成功
		writeJSON(w, http.StatusOK, request)
		return
	case model.RequestRejected:
		writeError(w, http.StatusConflict, "request has already been rejected")
		return
	}

	if err := h.store.ApproveAccessRequest(r.Context(), request); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, storage.ErrConflict):
			writeError(w, http.StatusConflict, "project is already assigned to another editor")
		default:
			log.Printf("[access] ApproveAccessRequest error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to approve access request")
		}
		return
	}

	h.notify(r.Context(), request.EditorEmail, model.NotifyRequestApproved,
		"Access request approved", "You are now the editor of this project", request.ProjectID)

	request.Status = model.RequestApproved
	log.Printf("[access] Request %s approved, project %s assigned to %s",
		request.ID, request.ProjectID, request.EditorEmail)
	writeJSON(w, http.StatusOK, request)
}

// Reject 拒绝访问请求
// PUT /projectApi/access-requests/{id}/reject
//
// 单文档更新，永不触碰项目。
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	request, err := h.store.GetAccessRequest(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get access request")
		return
	}
	if request == nil {
		writeError(w, http.StatusNotFound, "access request not found")
		return
	}
	if request.CreatorEmail != user.Email {
		writeError(w, http.StatusForbidden, "only the project creator can reject")
		return
	}
	if request.Terminal() {
		writeError(w, http.StatusConflict, "request is already resolved")
		return
	}

	if err := h.store.RejectAccessRequest(r.Context(), id); err != nil {
		log.Printf("[access] RejectAccessRequest error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reject access request")
		return
	}

	h.notify(r.Context(), request.EditorEmail, model.NotifyRequestRejected,
		"Access request rejected", "The creator chose another editor for this project", request.ProjectID)

	request.Status = model.RequestRejected
	writeJSON(w, http.StatusOK, request)
}

// notify 写入站内通知，失败仅记日志
func (h *Handler) notify(ctx context.Context, recipient string, typ model.NotificationType, title, body, projectID string) {
	n := &model.Notification{
		ID:             generateID("ntf"),
		RecipientEmail: recipient,
		Type:           typ,
		Title:          title,
		Body:           body,
		ProjectID:      projectID,
		CreatedAt:      time.Now(),
	}
	if err := h.store.CreateNotification(ctx, n); err != nil {
		log.Printf("[access] notify %s failed: %v", recipient, err)
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
