// Package review 评价领域 - Handler 单元测试
package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// ============================================================================
// Mock 实现
// ============================================================================

type mockStore struct {
	projects      map[string]*model.Project
	reviews       []*model.Review
	notifications []*model.Notification

	// UpdateUserRating 的最后一次调用
	ratedEmail   string
	ratedValue   float64
	ratedReviews int
}

func newMockStore() *mockStore {
	return &mockStore{projects: make(map[string]*model.Project)}
}

func (m *mockStore) CreateReview(ctx context.Context, review *model.Review) error {
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *mockStore) ListReviewsByEditor(ctx context.Context, editorEmail string) ([]*model.Review, error) {
	result := []*model.Review{}
	for _, r := range m.reviews {
		if r.EditorEmail == editorEmail {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockStore) GetReviewByProject(ctx context.Context, projectID string) (*model.Review, error) {
	for _, r := range m.reviews {
		if r.ProjectID == projectID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return m.projects[id], nil
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

func (m *mockStore) UpdateUserRating(ctx context.Context, email string, rating float64, totalReviews int) error {
	m.ratedEmail = email
	m.ratedValue = rating
	m.ratedReviews = totalReviews
	return nil
}

func (m *mockStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

// ============================================================================
// 测试辅助
// ============================================================================

var creatorUser = &auth.AuthUser{ID: "usr-c", Email: "creator@example.com", UserType: model.UserTypeCreator}

func newTestMux(store Store) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return mux
}

func asUser(req *http.Request, user *auth.AuthUser) *http.Request {
	return req.WithContext(auth.WithAuthUser(req.Context(), user))
}

func seedProject(store *mockStore, status model.ProjectStatus) *model.Project {
	p := &model.Project{
		ID:          "prj-test01",
		Status:      status,
		EditorEmail: "editor@example.com",
		UserCreated: "creator@example.com",
	}
	store.projects[p.ID] = p
	return p
}

func submit(mux *http.ServeMux, user *auth.AuthUser, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/reviewApi/submit-review", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, user))
	return w
}

// ============================================================================
// 提交评价
// ============================================================================

func TestSubmit_ClosesProjectAndRecomputesRating(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusCompleted)
	// 历史评价参与均值计算
	store.reviews = append(store.reviews, &model.Review{EditorEmail: "editor@example.com", Rating: 5})
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":4,"comments":"solid work"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}

	// 项目关闭
	p := store.projects["prj-test01"]
	if p.Status != model.StatusClosed || p.CompletionPercentage != 100 {
		t.Errorf("项目状态 = %s/%d, 期望 closed/100", p.Status, p.CompletionPercentage)
	}

	// 均值全量重算：(5+4)/2 = 4.5
	if store.ratedEmail != "editor@example.com" || store.ratedValue != 4.5 || store.ratedReviews != 2 {
		t.Errorf("评分重算: email=%q rating=%v total=%d, 期望 editor/4.5/2",
			store.ratedEmail, store.ratedValue, store.ratedReviews)
	}

	// 剪辑师收到通知
	if len(store.notifications) != 1 || store.notifications[0].Type != model.NotifyReviewSubmitted {
		t.Errorf("通知 = %+v", store.notifications)
	}
}

func TestSubmit_KeepProjectOpen(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusCompleted)
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":5,"close_project":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}
	if store.projects["prj-test01"].Status != model.StatusCompleted {
		t.Error("close_project=false 时项目不应关闭")
	}
}

func TestSubmit_RatingOutOfRange(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusCompleted)
	mux := newTestMux(store)

	for _, body := range []string{
		`{"project_id":"prj-test01","rating":0}`,
		`{"project_id":"prj-test01","rating":6}`,
	} {
		w := submit(mux, creatorUser, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("非法评分 %s: 状态码 = %d, 期望 400", body, w.Code)
		}
	}
	if len(store.reviews) != 0 {
		t.Error("非法评分不应落库")
	}
}

func TestSubmit_ClosedProject(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusClosed)
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":4}`)
	if w.Code != http.StatusConflict {
		t.Errorf("closed 项目再评价: 状态码 = %d, 期望 409", w.Code)
	}
}

func TestSubmit_NotCompleted(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusInProgress50)
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":4}`)
	if w.Code != http.StatusConflict {
		t.Errorf("未完成项目评价: 状态码 = %d, 期望 409", w.Code)
	}
}

func TestSubmit_PublishedProjectAllowed(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusPublished)
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":5}`)
	if w.Code != http.StatusCreated {
		t.Errorf("published 项目评价: 状态码 = %d, 期望 201", w.Code)
	}
}

func TestSubmit_SecondReviewRejected(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusCompleted)
	mux := newTestMux(store)

	w := submit(mux, creatorUser, `{"project_id":"prj-test01","rating":5,"close_project":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("首次评价: 状态码 = %d, 响应: %s", w.Code, w.Body.String())
	}

	w = submit(mux, creatorUser, `{"project_id":"prj-test01","rating":1,"close_project":false}`)
	if w.Code != http.StatusConflict {
		t.Errorf("重复评价: 状态码 = %d, 期望 409", w.Code)
	}
	if len(store.reviews) != 1 {
		t.Errorf("落库评价数 = %d, 期望 1", len(store.reviews))
	}
}

func TestSubmit_NotProjectCreator(t *testing.T) {
	store := newMockStore()
	seedProject(store, model.StatusCompleted)
	mux := newTestMux(store)

	other := &auth.AuthUser{ID: "usr-x", Email: "other@example.com", UserType: model.UserTypeCreator}
	w := submit(mux, other, `{"project_id":"prj-test01","rating":4}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("非项目创作者评价: 状态码 = %d, 期望 403", w.Code)
	}
}

func TestSubmit_ProjectNotFound(t *testing.T) {
	mux := newTestMux(newMockStore())

	w := submit(mux, creatorUser, `{"project_id":"prj-missing","rating":4}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("HTTP 状态码 = %d, 期望 404", w.Code)
	}
}

// ============================================================================
// 评价列表
// ============================================================================

func TestList_WithRatingAggregate(t *testing.T) {
	store := newMockStore()
	store.reviews = []*model.Review{
		{EditorEmail: "editor@example.com", Rating: 5},
		{EditorEmail: "editor@example.com", Rating: 4},
		{EditorEmail: "other@example.com", Rating: 1},
	}
	mux := newTestMux(store)

	req := httptest.NewRequest("GET", "/reviewApi/reviews?editor=editor@example.com", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, asUser(req, creatorUser))

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码 = %d", w.Code)
	}
	var result struct {
		Count  int     `json:"count"`
		Rating float64 `json:"rating"`
	}
	json.NewDecoder(w.Body).Decode(&result)
	if result.Count != 2 || result.Rating != 4.5 {
		t.Errorf("count = %d rating = %v, 期望 2/4.5", result.Count, result.Rating)
	}
}
