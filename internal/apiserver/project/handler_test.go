// Package project 项目领域 - Handler 单元测试
//
// 测试类型：Unit Test（Mock 存储层与对象存储，记录调用验证上传管线与回滚）
package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// ============================================================================
// Mock 实现
// ============================================================================

type mockStore struct {
	projects      map[string]*model.Project
	notifications []*model.Notification

	createProjectErr error
	appendErr        error
}

func newMockStore() *mockStore {
	return &mockStore{projects: make(map[string]*model.Project)}
}

func (m *mockStore) CreateProject(ctx context.Context, p *model.Project) error {
	if m.createProjectErr != nil {
		return m.createProjectErr
	}
	m.projects[p.ID] = p
	return nil
}

func (m *mockStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return m.projects[id], nil
}

func (m *mockStore) ListProjects(ctx context.Context, filter storage.ProjectFilter) ([]*model.Project, error) {
	result := []*model.Project{}
	for _, p := range m.projects {
		if filter.Creator != "" && p.UserCreated != filter.Creator {
			continue
		}
		if filter.EditorEmail != "" && p.EditorEmail != filter.EditorEmail {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockStore) UpdateProjectStatus(ctx context.Context, id string, status model.ProjectStatus, pct int) error {
	p, ok := m.projects[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Status = status
	p.CompletionPercentage = pct
	return nil
}

func (m *mockStore) AppendVideoResponse(ctx context.Context, id string, resp model.VideoResponse) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	p, ok := m.projects[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Responses = append(p.Responses, resp)
	return nil
}

func (m *mockStore) SetProjectYouTube(ctx context.Context, id string, yt *model.YouTubeUpload) error {
	p, ok := m.projects[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.YouTube = yt
	return nil
}

func (m *mockStore) DeleteProject(ctx context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

func (m *mockStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

// mockObjects 记录上传/删除调用
type mockObjects struct {
	uploads []string
	deletes []string

	// key 包含该子串时上传失败
	failOn string
}

func (m *mockObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if m.failOn != "" && strings.Contains(key, m.failOn) {
		return "", errors.New("upload failed")
	}
	m.uploads = append(m.uploads, key)
	return "http://minio.local/zensync/" + key, nil
}

func (m *mockObjects) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *mockObjects) KeyFromURL(url string) string {
	const prefix = "http://minio.local/zensync/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// ============================================================================
// 测试辅助
// ============================================================================

var (
	creatorUser = &auth.AuthUser{ID: "usr-c", Email: "creator@example.com", UserType: model.UserTypeCreator}
	editorUser  = &auth.AuthUser{ID: "usr-e", Email: "editor@example.com", UserType: model.UserTypeEditor}
)

func newTestMux(store Store, objects ObjectStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store, objects, 64<<20).RegisterRoutes(mux)
	return mux
}

func asUser(req *http.Request, user *auth.AuthUser) *http.Request {
	return req.WithContext(auth.WithAuthUser(req.Context(), user))
}

// multipartBody 构造 multipart 请求体
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for field, filename := range files {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write([]byte("fake file content"))
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

// ============================================================================
// 创建项目
// ============================================================================

func TestCreate_Basic(t *testing.T) {
	store := newMockStore()
	objects := &mockObjects{}
	mux := newTestMux(store, objects)

	body, contentType := multipartBody(t,
		map[string]string{"title": "My vlog", "description": "raw footage", "tags": "travel, vlog"},
		map[string]string{"video": "raw.mp4", "thumbnail": "thumb.png"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码 = %d, 期望 201, 响应: %s", w.Code, w.Body.String())
	}

	var p model.Project
	json.NewDecoder(w.Body).Decode(&p)
	if !strings.HasPrefix(p.ID, "prj-") {
		t.Errorf("项目 ID 格式错误: %q", p.ID)
	}
	if p.Status != model.StatusUnassigned {
		t.Errorf("status = %q, 期望 unassigned", p.Status)
	}
	if p.UserCreated != "creator@example.com" {
		t.Errorf("user_created = %q", p.UserCreated)
	}
	if len(p.Tags) != 2 {
		t.Errorf("tags = %v", p.Tags)
	}
	if len(objects.uploads) != 2 {
		t.Errorf("上传调用数 = %d, 期望 2 (video + thumbnail)", len(objects.uploads))
	}
	if len(store.projects) != 1 {
		t.Errorf("落库项目数 = %d, 期望 1", len(store.projects))
	}
}

func TestCreate_WithEditorAssigned(t *testing.T) {
	store := newMockStore()
	mux := newTestMux(store, &mockObjects{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "description": "d", "editor_email": "editor@example.com"},
		map[string]string{"video": "v.mp4", "thumbnail": "t.png"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}
	var p model.Project
	json.NewDecoder(w.Body).Decode(&p)
	if p.Status != model.StatusAssigned {
		t.Errorf("带 editor_email 创建的项目 status = %q, 期望 assigned", p.Status)
	}
}

func TestCreate_MissingThumbnail(t *testing.T) {
	store := newMockStore()
	objects := &mockObjects{}
	mux := newTestMux(store, objects)

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "description": "d"},
		map[string]string{"video": "v.mp4"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("HTTP 状态码 = %d, 期望 400", w.Code)
	}
	// 校验先于上传：缺文件时不得有任何副作用
	if len(objects.uploads) != 0 {
		t.Errorf("缺缩略图时不应发起上传, uploads = %v", objects.uploads)
	}
	if len(store.projects) != 0 {
		t.Error("缺缩略图时不应落库")
	}
}

func TestCreate_ThumbnailUploadFails_RollsBackVideo(t *testing.T) {
	store := newMockStore()
	objects := &mockObjects{failOn: "thumbnail"}
	mux := newTestMux(store, objects)

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "description": "d"},
		map[string]string{"video": "v.mp4", "thumbnail": "t.png"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("HTTP 状态码 = %d, 期望 502", w.Code)
	}
	if len(objects.deletes) != 1 || !strings.Contains(objects.deletes[0], "video") {
		t.Errorf("应回滚已上传的 video, deletes = %v", objects.deletes)
	}
	if len(store.projects) != 0 {
		t.Error("上传失败不应落库")
	}
}

func TestCreate_DBFails_RollsBackBothObjects(t *testing.T) {
	store := newMockStore()
	store.createProjectErr = errors.New("db down")
	objects := &mockObjects{}
	mux := newTestMux(store, objects)

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "description": "d"},
		map[string]string{"video": "v.mp4", "thumbnail": "t.png"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("HTTP 状态码 = %d, 期望 500", w.Code)
	}
	if len(objects.deletes) != 2 {
		t.Errorf("插入失败应删除两个已上传对象, deletes = %v", objects.deletes)
	}
}

func TestCreate_EditorForbidden(t *testing.T) {
	mux := newTestMux(newMockStore(), &mockObjects{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "t", "description": "d"},
		map[string]string{"video": "v.mp4", "thumbnail": "t.png"})
	req := httptest.NewRequest("POST", "/projectApi/project", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusForbidden {
		t.Errorf("剪辑师创建项目: 状态码 = %d, 期望 403", w.Code)
	}
}

// ============================================================================
// 状态流转
// ============================================================================

func seedProject(store *mockStore, status model.ProjectStatus, editor string) *model.Project {
	p := &model.Project{
		ID:                   "prj-test01",
		Title:                "seeded",
		Status:               status,
		EditorEmail:          editor,
		UserCreated:          "creator@example.com",
		CompletionPercentage: status.Percentage(),
	}
	store.projects[p.ID] = p
	return p
}

func TestUpdateStatus_Forward(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusAssigned, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"in_progress_50"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}
	p := store.projects["prj-test01"]
	if p.Status != model.StatusInProgress50 || p.CompletionPercentage != 50 {
		t.Errorf("status = %s pct = %d, 期望 in_progress_50/50", p.Status, p.CompletionPercentage)
	}
}

func TestUpdateStatus_BackwardsRejected(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusInProgress75, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"in_progress_25"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusConflict {
		t.Errorf("回退状态: 状态码 = %d, 期望 409", w.Code)
	}
	if store.projects["prj-test01"].Status != model.StatusInProgress75 {
		t.Error("被拒绝的迁移不应改变状态")
	}
}

func TestUpdateStatus_ClosedBlocked(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusClosed, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"completed"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusConflict {
		t.Errorf("closed 项目改状态: 状态码 = %d, 期望 409", w.Code)
	}
}

func TestUpdateStatus_PercentageMismatch(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusAssigned, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"in_progress_25","completion_percentage":80}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusBadRequest {
		t.Errorf("百分比与状态不符: 状态码 = %d, 期望 400", w.Code)
	}
}

func TestUpdateStatus_PublishedReserved(t *testing.T) {
	// published 只能由 YouTube 发布流程写入
	store := newMockStore()
	seedProject(store, model.StatusCompleted, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"published"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusConflict {
		t.Errorf("直接设置 published: 状态码 = %d, 期望 409", w.Code)
	}
	if store.projects["prj-test01"].Status != model.StatusCompleted {
		t.Error("被拒绝的迁移不应改变状态")
	}
}

func TestUpdateStatus_NonParticipant(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusAssigned, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	outsider := &auth.AuthUser{ID: "usr-x", Email: "other@example.com", UserType: model.UserTypeEditor}
	req := httptest.NewRequest("PUT", "/projectApi/project/prj-test01/status",
		strings.NewReader(`{"status":"in_progress_25"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, outsider))

	if w.Code != http.StatusForbidden {
		t.Errorf("非参与者改状态: 状态码 = %d, 期望 403", w.Code)
	}
}

// ============================================================================
// 删除项目
// ============================================================================

func TestDelete_Basic(t *testing.T) {
	store := newMockStore()
	objects := &mockObjects{}
	p := seedProject(store, model.StatusClosed, "editor@example.com")
	p.VideoURL = "http://minio.local/zensync/prj-test01/video/raw.mp4"
	p.ThumbnailURL = "http://minio.local/zensync/prj-test01/thumbnail/thumb.png"
	p.Responses = []model.VideoResponse{
		{VideoURL: "http://minio.local/zensync/prj-test01/response/cut.mp4"},
	}
	mux := newTestMux(store, objects)

	req := httptest.NewRequest("DELETE", "/projectApi/project/prj-test01", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}
	if _, ok := store.projects["prj-test01"]; ok {
		t.Error("项目文档未删除")
	}
	// 视频 + 封面 + 成果对象一并清理
	if len(objects.deletes) != 3 {
		t.Errorf("清理对象数 = %d, 期望 3, deletes = %v", len(objects.deletes), objects.deletes)
	}
}

func TestDelete_SkipsForeignURLs(t *testing.T) {
	store := newMockStore()
	objects := &mockObjects{}
	p := seedProject(store, model.StatusClosed, "editor@example.com")
	p.VideoURL = "https://cdn.example.com/elsewhere.mp4"
	p.ThumbnailURL = "http://minio.local/zensync/prj-test01/thumbnail/thumb.png"
	mux := newTestMux(store, objects)

	req := httptest.NewRequest("DELETE", "/projectApi/project/prj-test01", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码 = %d", w.Code)
	}
	// 非本存储的 URL 不产生删除调用
	if len(objects.deletes) != 1 || !strings.Contains(objects.deletes[0], "thumbnail") {
		t.Errorf("deletes = %v, 期望仅清理 thumbnail", objects.deletes)
	}
}

func TestDelete_NotCreator(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusClosed, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	other := &auth.AuthUser{ID: "usr-x", Email: "other@example.com", UserType: model.UserTypeCreator}
	req := httptest.NewRequest("DELETE", "/projectApi/project/prj-test01", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, other))

	if w.Code != http.StatusForbidden {
		t.Errorf("非项目创作者删除: 状态码 = %d, 期望 403", w.Code)
	}
	if _, ok := store.projects["prj-test01"]; !ok {
		t.Error("被拒绝的删除不应移除项目")
	}
}

func TestDelete_EditorForbidden(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusClosed, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("DELETE", "/projectApi/project/prj-test01", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusForbidden {
		t.Errorf("剪辑师删除项目: 状态码 = %d, 期望 403", w.Code)
	}
}

func TestDelete_NotFound(t *testing.T) {
	mux := newTestMux(newMockStore(), &mockObjects{})

	req := httptest.NewRequest("DELETE", "/projectApi/project/prj-missing", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusNotFound {
		t.Errorf("HTTP 状态码 = %d, 期望 404", w.Code)
	}
}

// ============================================================================
// 视频成果提交
// ============================================================================

func TestAddVideoResponse_Basic(t *testing.T) {
	store := newMockStore()
	p := seedProject(store, model.StatusInProgress50, "editor@example.com")
	p.Responses = []model.VideoResponse{{Description: "first cut", SubmittedAt: time.Now()}}
	mux := newTestMux(store, &mockObjects{})

	body, contentType := multipartBody(t,
		map[string]string{"description": "second cut"},
		map[string]string{"video": "cut2.mp4"})
	req := httptest.NewRequest("POST", "/projectApi/add-video-response/prj-test01", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}
	// 追加写入，历史成果保留
	if len(p.Responses) != 2 {
		t.Fatalf("responses 数量 = %d, 期望 2", len(p.Responses))
	}
	if p.Responses[0].Description != "first cut" || p.Responses[1].Description != "second cut" {
		t.Errorf("responses 顺序错误: %+v", p.Responses)
	}
	// 创作者收到通知
	if len(store.notifications) != 1 || store.notifications[0].RecipientEmail != "creator@example.com" {
		t.Errorf("通知 = %+v", store.notifications)
	}
}

func TestAddVideoResponse_NotAssignedEditor(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusInProgress50, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	outsider := &auth.AuthUser{ID: "usr-x", Email: "other@example.com", UserType: model.UserTypeEditor}
	body, contentType := multipartBody(t,
		map[string]string{"description": "sneaky cut"},
		map[string]string{"video": "cut.mp4"})
	req := httptest.NewRequest("POST", "/projectApi/add-video-response/prj-test01", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, outsider))

	if w.Code != http.StatusForbidden {
		t.Errorf("未指派剪辑师提交: 状态码 = %d, 期望 403", w.Code)
	}
}

func TestAddVideoResponse_ClosedProject(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusClosed, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	body, contentType := multipartBody(t,
		map[string]string{"description": "late cut"},
		map[string]string{"video": "cut.mp4"})
	req := httptest.NewRequest("POST", "/projectApi/add-video-response/prj-test01", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusConflict {
		t.Errorf("closed 项目提交成果: 状态码 = %d, 期望 409", w.Code)
	}
}

func TestAddVideoResponse_DBFails_RollsBackUpload(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusInProgress50, "editor@example.com")
	store.appendErr = errors.New("db down")
	objects := &mockObjects{}
	mux := newTestMux(store, objects)

	body, contentType := multipartBody(t,
		map[string]string{"description": "cut"},
		map[string]string{"video": "cut.mp4"})
	req := httptest.NewRequest("POST", "/projectApi/add-video-response/prj-test01", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, editorUser))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("HTTP 状态码 = %d, 期望 500", w.Code)
	}
	if len(objects.deletes) != 1 {
		t.Errorf("落库失败应删除已上传对象, deletes = %v", objects.deletes)
	}
}

// ============================================================================
// 列表 / 详情
// ============================================================================

func TestGet_NotFound(t *testing.T) {
	mux := newTestMux(newMockStore(), &mockObjects{})

	req := httptest.NewRequest("GET", "/projectApi/project/prj-missing", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusNotFound {
		t.Errorf("HTTP 状态码 = %d, 期望 404", w.Code)
	}
}

func TestGet_IncludesStatusLabel(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusInProgress25, "editor@example.com")
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("GET", "/projectApi/project/prj-test01", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	var result map[string]interface{}
	json.NewDecoder(w.Body).Decode(&result)
	if result["status_label"] != "Just started" {
		t.Errorf("status_label = %v", result["status_label"])
	}
}

func TestListByCreator(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusUnassigned, "")
	store.projects["prj-other"] = &model.Project{ID: "prj-other", UserCreated: "someone@else.com"}
	mux := newTestMux(store, &mockObjects{})

	req := httptest.NewRequest("GET", "/projectApi/projects?creator=creator@example.com", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	var result struct {
		Count int `json:"count"`
	}
	json.NewDecoder(w.Body).Decode(&result)
	if result.Count != 1 {
		t.Errorf("count = %d, 期望 1", result.Count)
	}
}
