// Package youtube 创作者 YouTube 授权与发布
//
// 授权走标准 OAuth 2.0 授权码流程；回调 state 带签名和过期时间，
// 配置 Redis 时严格一次性（见 oauthstate）。发布由被指派的剪辑师
// 触发，视频实际发到创作者的频道。
package youtube

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	yt "google.golang.org/api/youtube/v3"

	"zensync/internal/apiserver/auth"
	"zensync/internal/config"
	"zensync/internal/shared/model"
	"zensync/internal/shared/oauthstate"
)

// Store YouTube 领域需要的存储接口
type Store interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserYouTube(ctx context.Context, id string, yt *model.YouTubeAuth) error
	AddPendingUpload(ctx context.Context, id string, p model.PendingUpload) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	SetProjectYouTube(ctx context.Context, id string, yt *model.YouTubeUpload) error
	CreateNotification(ctx context.Context, n *model.Notification) error
}

// ObjectStore 发布时读取成片的对象存储接口
type ObjectStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, int64, error)
	KeyFromURL(url string) string
}

// Handler YouTube HTTP 处理器
type Handler struct {
	store     Store
	objects   ObjectStore
	states    *oauthstate.Store
	uploader  Uploader
	google    config.GoogleConfig
	clientURL string
}

// NewHandler 创建 YouTube 处理器
func NewHandler(store Store, objects ObjectStore, states *oauthstate.Store, uploader Uploader, google config.GoogleConfig, clientURL string) *Handler {
	return &Handler{
		store:     store,
		objects:   objects,
		states:    states,
		uploader:  uploader,
		google:    google,
		clientURL: strings.TrimSuffix(clientURL, "/"),
	}
}

// RegisterRoutes 注册 YouTube 相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projectApi/auth/youtube/init", auth.CreatorOnly(h.Init))
	mux.HandleFunc("GET /projectApi/auth/youtube/callback", h.Callback)
	mux.HandleFunc("GET /projectApi/youtube/status", h.Status)
	mux.HandleFunc("DELETE /projectApi/youtube/disconnect", auth.CreatorOnly(h.Disconnect))
	mux.HandleFunc("POST /projectApi/youtube/upload/{projectId}", auth.EditorOnly(h.Upload))
}

// oauthConfig Google OAuth 配置
func (h *Handler) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.google.ClientID,
		ClientSecret: h.google.ClientSecret,
		RedirectURL:  h.google.RedirectURI,
		Scopes:       []string{yt.YoutubeUploadScope, yt.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// Init 发起 YouTube 授权
// GET /projectApi/auth/youtube/init
//
// 签发一次性 state 后 302 到 Google 授权页。
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	if h.google.ClientID == "" || h.google.ClientSecret == "" {
		writeError(w, http.StatusServiceUnavailable, "youtube integration is not configured")
		return
	}

	state, err := h.states.Issue(r.Context(), user.ID)
	if err != nil {
		log.Printf("[youtube] issue state error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	authURL := h.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback Google 授权回调
// GET /projectApi/auth/youtube/callback?state=&code=
//
// 校验并消费 state、换取令牌、读取频道信息后落库，
// 最终 302 回前端（成功或失败都带查询参数说明结果）。
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	userID, err := h.states.Consume(r.Context(), state)
	if err != nil {
		log.Printf("[youtube] state rejected: %v", err)
		h.redirectClient(w, r, "youtube=error&reason=invalid_state")
		return
	}
	if code == "" {
		h.redirectClient(w, r, "youtube=error&reason=denied")
		return
	}

	cfg := h.oauthConfig()
	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[youtube] code exchange error: %v", err)
		h.redirectClient(w, r, "youtube=error&reason=exchange_failed")
		return
	}

	channelID, channelTitle, err := h.uploader.ChannelInfo(r.Context(), cfg.TokenSource(r.Context(), token))
	if err != nil {
		log.Printf("[youtube] channel info error: %v", err)
		h.redirectClient(w, r, "youtube=error&reason=channel_lookup_failed")
		return
	}

	// Google 只在首次授权返回 refresh_token，重连时沿用已存的
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		if u, err := h.store.GetUserByID(r.Context(), userID); err == nil && u != nil && u.YouTube != nil {
			refreshToken = u.YouTube.RefreshToken
		}
	}

	ya := &model.YouTubeAuth{
		ChannelID:    channelID,
		ChannelTitle: channelTitle,
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       token.Expiry,
		IsActive:     true,
		ConnectedAt:  time.Now(),
	}
	if err := h.store.UpdateUserYouTube(r.Context(), userID, ya); err != nil {
		log.Printf("[youtube] persist auth error: %v", err)
		h.redirectClient(w, r, "youtube=error&reason=persist_failed")
		return
	}

	log.Printf("[youtube] user %s connected channel %s (%s)", userID, channelTitle, channelID)
	h.redirectClient(w, r, "youtube=connected")
}

// Status 当前用户的 YouTube 连接状态
// GET /projectApi/youtube/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	u, err := h.store.GetUserByID(r.Context(), user.ID)
	if err != nil || u == nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	if !u.YouTubeConnected() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected":     true,
		"channel_id":    u.YouTube.ChannelID,
		"channel_title": u.YouTube.ChannelTitle,
		"connected_at":  u.YouTube.ConnectedAt,
	})
}

// Disconnect 断开 YouTube 授权
// DELETE /projectApi/youtube/disconnect
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	if err := h.store.UpdateUserYouTube(r.Context(), user.ID, nil); err != nil {
		log.Printf("[youtube] disconnect error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "youtube disconnected"})
}

type uploadRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Privacy     string   `json:"privacy"`
}

// Upload 把项目的最新成片发布到创作者的 YouTube 频道
// POST /projectApi/youtube/upload/{projectId}
//
// 仅被指派的剪辑师可触发；发布成功后项目转 published。
// 发布成功但项目更新两次失败时，写入创作者的 pending_uploads 对账记录，
// 视频此时已在 YouTube 上，接口仍返回成功。
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	projectID := r.PathValue("projectId")

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	privacy := req.Privacy
	if privacy == "" {
		privacy = "private"
	}
	if privacy != "public" && privacy != "unlisted" && privacy != "private" {
		writeError(w, http.StatusBadRequest, "privacy must be public, unlisted or private")
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
	if project.EditorEmail != user.Email {
		writeError(w, http.StatusForbidden, "only the assigned editor can publish")
		return
	}
	if project.YouTube != nil {
		writeError(w, http.StatusConflict, "project has already been published")
		return
	}
	if project.Status == model.StatusClosed {
		writeError(w, http.StatusConflict, "project is closed")
		return
	}
	if len(project.Responses) == 0 {
		writeError(w, http.StatusConflict, "no edited video to publish")
		return
	}

	creator, err := h.store.GetUserByEmail(r.Context(), project.UserCreated)
	if err != nil || creator == nil {
		writeError(w, http.StatusInternalServerError, "failed to get project creator")
		return
	}
	if !creator.YouTubeConnected() {
		writeError(w, http.StatusConflict, "project creator has not connected YouTube")
		return
	}

	// 最新一次提交的成片
	latest := project.Responses[len(project.Responses)-1]
	key := h.objects.KeyFromURL(latest.VideoURL)
	if key == "" {
		writeError(w, http.StatusConflict, "video is not in managed storage")
		return
	}
	media, _, err := h.objects.Download(r.Context(), key)
	if err != nil {
		log.Printf("[youtube] download %s error: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to read video")
		return
	}
	defer media.Close()

	cfg := h.oauthConfig()
	src := cfg.TokenSource(r.Context(), &oauth2.Token{
		AccessToken:  creator.YouTube.AccessToken,
		RefreshToken: creator.YouTube.RefreshToken,
		Expiry:       creator.YouTube.Expiry,
	})

	meta := VideoMetadata{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tags:        req.Tags,
		Privacy:     privacy,
	}
	if meta.Title == "" {
		meta.Title = project.Title
	}

	videoID, err := h.uploader.Upload(r.Context(), src, meta, media)
	if err != nil {
		h.writeUploadError(w, creator, err)
		return
	}

	// TokenSource 可能已静默刷新，落库新令牌
	h.persistRefreshedToken(r.Context(), creator, src)

	upload := &model.YouTubeUpload{
		VideoID:    videoID,
		URL:        "https://www.youtube.com/watch?v=" + videoID,
		UploadedBy: user.Email,
		UploadedAt: time.Now(),
	}

	if err := h.store.SetProjectYouTube(r.Context(), project.ID, upload); err != nil {
		log.Printf("[youtube] SetProjectYouTube error (retrying): %v", err)
		if err := h.store.SetProjectYouTube(r.Context(), project.ID, upload); err != nil {
			log.Printf("[youtube] SetProjectYouTube retry failed, recording pending upload: %v", err)
			pending := model.PendingUpload{
				ProjectID:  project.ID,
				VideoID:    videoID,
				UploadedAt: upload.UploadedAt,
			}
			if err := h.store.AddPendingUpload(r.Context(), creator.ID, pending); err != nil {
				log.Printf("[youtube] AddPendingUpload error: %v", err)
			}
		}
	}

	h.notify(r.Context(), project.UserCreated, upload, project.ID)

	log.Printf("[youtube] project %s published as video %s by %s", project.ID, videoID, user.Email)
	writeJSON(w, http.StatusCreated, upload)
}

// writeUploadError 把 YouTube API 错误映射为合适的 HTTP 状态
func (h *Handler) writeUploadError(w http.ResponseWriter, creator *model.User, err error) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			log.Printf("[youtube] authorization rejected for %s: %v", creator.Email, err)
			writeError(w, http.StatusConflict, "youtube authorization expired, the creator must reconnect")
			return
		case http.StatusBadRequest:
			writeError(w, http.StatusBadRequest, "youtube rejected the video metadata")
			return
		}
	}
	log.Printf("[youtube] upload error: %v", err)
	writeError(w, http.StatusBadGateway, "youtube upload failed")
}

// persistRefreshedToken 上传后把刷新过的访问令牌写回用户文档
func (h *Handler) persistRefreshedToken(ctx context.Context, creator *model.User, src oauth2.TokenSource) {
	fresh, err := src.Token()
	if err != nil || fresh.AccessToken == creator.YouTube.AccessToken {
		return
	}
	ya := *creator.YouTube
	ya.AccessToken = fresh.AccessToken
	ya.Expiry = fresh.Expiry
	if fresh.RefreshToken != "" {
		ya.RefreshToken = fresh.RefreshToken
	}
	if err := h.store.UpdateUserYouTube(ctx, creator.ID, &ya); err != nil {
		log.Printf("[youtube] persist refreshed token error: %v", err)
	}
}

// notify 写入站内通知，失败仅记日志
func (h *Handler) notify(ctx context.Context, recipient string, upload *model.YouTubeUpload, projectID string) {
	n := &model.Notification{
		ID:             generateID("ntf"),
		RecipientEmail: recipient,
		Type:           model.NotifyYouTubePublished,
		Title:          "Video published to YouTube",
		Body:           upload.URL,
		ProjectID:      projectID,
		CreatedAt:      time.Now(),
	}
	if err := h.store.CreateNotification(ctx, n); err != nil {
		log.Printf("[youtube] notify %s failed: %v", recipient, err)
	}
}

// redirectClient 302 回前端，query 为结果说明
func (h *Handler) redirectClient(w http.ResponseWriter, r *http.Request, query string) {
	target := h.clientURL + "/settings?" + query
	if _, err := url.Parse(target); err != nil {
		target = h.clientURL
	}
	http.Redirect(w, r, target, http.StatusFound)
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
