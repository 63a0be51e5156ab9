// Package project 项目领域 - HTTP 处理
//
// 覆盖项目创建（multipart 上传管线）、列表/详情、删除、状态推进、
// 剪辑师视频成果提交与查询。
package project

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// ObjectStore 对象存储接口（由 objstore.Client 实现）
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL 从公开 URL 还原对象 key，非本存储的 URL 返回空串
	KeyFromURL(url string) string
}

// Store 项目领域需要的存储接口
type Store interface {
	storage.ProjectStore
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// Handler 项目领域 HTTP 处理器
type Handler struct {
	store   Store
	objects ObjectStore

	// 单文件大小上限（字节）
	maxUploadSize int64
}

// NewHandler 创建项目处理器
func NewHandler(store Store, objects ObjectStore, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 512 << 20
	}
	return &Handler{store: store, objects: objects, maxUploadSize: maxUploadSize}
}

// RegisterRoutes 注册项目相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /projectApi/project", auth.CreatorOnly(h.Create))
	mux.HandleFunc("GET /projectApi/projects", h.ListByCreator)
	mux.HandleFunc("GET /projectApi/editor-projects", h.ListByEditor)
	mux.HandleFunc("GET /projectApi/project/{id}", h.Get)
	mux.HandleFunc("DELETE /projectApi/project/{id}", auth.CreatorOnly(h.Delete))
	mux.HandleFunc("PUT /projectApi/project/{id}/status", h.UpdateStatus)
	mux.HandleFunc("POST /projectApi/add-video-response/{id}", auth.EditorOnly(h.AddVideoResponse))
	mux.HandleFunc("GET /projectApi/project-responses/{id}", h.ListResponses)
}

// Create 创建项目
// POST /projectApi/project (multipart)
//
// 表单字段：title, description, tags (逗号分隔), deadline (RFC3339, 可选),
// editor_email (可选), video (文件), thumbnail (文件)。
//
// 管线：全部校验 → 上传 video → 上传 thumbnail → 插入文档。
// 任何一步失败都会 best-effort 删除已上传对象，数据库不残留半成品。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	// 两个文件 + 表单开销
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return
	}

	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	var deadline *time.Time
	if d := r.FormValue("deadline"); d != "" {
		t, err := time.Parse(time.RFC3339, d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "deadline must be RFC3339")
			return
		}
		deadline = &t
	}

	// 文件校验先于任何上传：缺文件时既不写对象存储也不写数据库
	video, videoHeader, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer video.Close()

	thumbnail, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		writeError(w, http.StatusBadRequest, "thumbnail file is required")
		return
	}
	defer thumbnail.Close()

	if videoHeader.Size > h.maxUploadSize || thumbHeader.Size > h.maxUploadSize {
		writeError(w, http.StatusBadRequest, "file exceeds upload size limit")
		return
	}

	projectID := generateID("prj")
	videoKey := objectKey(projectID, "video", videoHeader.Filename)
	thumbKey := objectKey(projectID, "thumbnail", thumbHeader.Filename)

	videoURL, err := h.objects.Upload(r.Context(), videoKey, video, videoHeader.Size,
		videoHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[project] video upload error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to upload video")
		return
	}

	thumbURL, err := h.objects.Upload(r.Context(), thumbKey, thumbnail, thumbHeader.Size,
		thumbHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[project] thumbnail upload error: %v", err)
		h.cleanupObjects(videoKey)
		writeError(w, http.StatusBadGateway, "failed to upload thumbnail")
		return
	}

	editorEmail := strings.TrimSpace(r.FormValue("editor_email"))
	status := model.StatusUnassigned
	if editorEmail != "" {
		status = model.StatusAssigned
	}

	now := time.Now()
	project := &model.Project{
		ID:           projectID,
		Title:        title,
		Description:  description,
		Tags:         tags,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		EditorEmail:  editorEmail,
		Status:       status,
		Deadline:     deadline,
		UserCreated:  user.Email,
		Responses:    []model.VideoResponse{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateProject(r.Context(), project); err != nil {
		log.Printf("[project] CreateProject error: %v", err)
		h.cleanupObjects(videoKey, thumbKey)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	log.Printf("[project] Created %s by %s (status=%s)", project.ID, user.Email, project.Status)
	project.StatusLabel = project.Status.Label()
	writeJSON(w, http.StatusCreated, project)
}

// cleanupObjects best-effort 删除已上传对象，失败仅记日志
func (h *Handler) cleanupObjects(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := h.objects.Delete(ctx, key); err != nil {
			log.Printf("[project] cleanup %s failed: %v", key, err)
		}
	}
}

// Get 获取项目详情
// GET /projectApi/project/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	project.StatusLabel = project.Status.Label()
	writeJSON(w, http.StatusOK, project)
}

// Delete 删除项目
// DELETE /projectApi/project/{id}
//
// 仅项目创作者可删。文档先删，随后 best-effort 清理视频、封面
// 与全部成果对象；对象清理失败仅记日志，不回滚文档删除。
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.UserCreated != user.Email {
		writeError(w, http.StatusForbidden, "only the project creator can delete it")
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		log.Printf("[project] DeleteProject error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	urls := []string{project.VideoURL, project.ThumbnailURL}
	for _, resp := range project.Responses {
		urls = append(urls, resp.VideoURL)
	}
	var keys []string
	for _, u := range urls {
		if key := h.objects.KeyFromURL(u); key != "" {
			keys = append(keys, key)
		}
	}
	h.cleanupObjects(keys...)

	log.Printf("[project] Deleted %s by %s (%d objects)", id, user.Email, len(keys))
	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

// ListByCreator 列出创作者的项目
// GET /projectApi/projects?creator=
func (h *Handler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	creator := r.URL.Query().Get("creator")
	if creator == "" {
		creator = auth.GetAuthUser(r.Context()).Email
	}
	h.list(w, r, storage.ProjectFilter{
		Creator: creator,
		Status:  model.ProjectStatus(r.URL.Query().Get("status")),
	})
}

// ListByEditor 列出指派给剪辑师的项目
// GET /projectApi/editor-projects?email=
func (h *Handler) ListByEditor(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = auth.GetAuthUser(r.Context()).Email
	}
	h.list(w, r, storage.ProjectFilter{
		EditorEmail: email,
		Status:      model.ProjectStatus(r.URL.Query().Get("status")),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter storage.ProjectFilter) {
	projects, err := h.store.ListProjects(r.Context(), filter)
	if err != nil {
		log.Printf("[project] ListProjects error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	for _, p := range projects {
		p.StatusLabel = p.Status.Label()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

type updateStatusRequest struct {
	Status               string `json:"status"`
	CompletionPercentage *int   `json:"completion_percentage"`
}

// UpdateStatus 推进项目状态
// PUT /projectApi/project/{id}/status
//
// 服务端校验状态迁移与完成百分比一致性：closed 阻断一切变更，
// 状态不允许回退，百分比必须匹配状态档位，published 不接受直接设置。
// 只有项目创作者或被指派的剪辑师可以更新。
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next := model.ProjectStatus(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	// published 由 YouTube 发布流程写入，不接受直接设置
	if next == model.StatusPublished {
		writeError(w, http.StatusConflict, "published is set by the youtube publish flow")
		return
	}

	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if user.Email != project.UserCreated && user.Email != project.EditorEmail {
		writeError(w, http.StatusForbidden, "not a participant of this project")
		return
	}

	if err := project.Status.CanTransitionTo(next); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	pct := next.Percentage()
	if req.CompletionPercentage != nil {
		pct = *req.CompletionPercentage
	}
	if err := next.ValidPercentage(pct); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateProjectStatus(r.Context(), id, next, pct); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		log.Printf("[project] UpdateProjectStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                next,
		"status_label":          next.Label(),
		"completion_percentage": pct,
	})
}

// AddVideoResponse 剪辑师提交视频成果
// POST /projectApi/add-video-response/{id} (multipart: description, video)
//
// 追加写入，历史成果永不截断。
func (h *Handler) AddVideoResponse(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	video, videoHeader, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer video.Close()
	if videoHeader.Size > h.maxUploadSize {
		writeError(w, http.StatusBadRequest, "file exceeds upload size limit")
		return
	}

	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.EditorEmail != user.Email {
		writeError(w, http.StatusForbidden, "only the assigned editor can submit responses")
		return
	}
	if project.Status.Terminal() {
		writeError(w, http.StatusConflict, "project is closed")
		return
	}

	key := objectKey(id, "response", videoHeader.Filename)
	videoURL, err := h.objects.Upload(r.Context(), key, video, videoHeader.Size,
		videoHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[project] response upload error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to upload video")
		return
	}

	resp := model.VideoResponse{
		Description: description,
		VideoURL:    videoURL,
		SubmittedBy: user.Email,
		SubmittedAt: time.Now(),
	}
	if err := h.store.AppendVideoResponse(r.Context(), id, resp); err != nil {
		log.Printf("[project] AppendVideoResponse error: %v", err)
		h.cleanupObjects(key)
		writeError(w, http.StatusInternalServerError, "failed to save response")
		return
	}

	h.notify(r.Context(), project.UserCreated, model.NotifyResponseSubmitted,
		"New video response", user.Email+" submitted a new video for \""+project.Title+"\"", id)

	writeJSON(w, http.StatusCreated, resp)
}

// ListResponses 按提交顺序返回视频成果
// GET /projectApi/project-responses/{id}
func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"responses": project.Responses,
		"count":     len(project.Responses),
	})
}

// notify 写入站内通知，失败仅记日志，不影响主流程
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
		log.Printf("[project] notify %s failed: %v", recipient, err)
	}
}
