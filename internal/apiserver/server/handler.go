// Package server 路由配置与核心基础设施
//
// 本文件把各领域独立包的路由装配成完整的 HTTP Handler：
//   - auth: 注册/登录/令牌刷新/个人资料
//   - project: 项目创建（上传）、状态流转、成片提交
//   - access: 访问请求工作流
//   - review: 评价与评分
//   - notification: 站内通知
//   - chat: 项目聊天（REST + WebSocket）
//   - youtube: YouTube 授权与发布
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"zensync/internal/apiserver/access"
	"zensync/internal/apiserver/auth"
	"zensync/internal/apiserver/chat"
	"zensync/internal/apiserver/notification"
	"zensync/internal/apiserver/project"
	"zensync/internal/apiserver/review"
	"zensync/internal/apiserver/youtube"
	"zensync/internal/config"
	"zensync/internal/shared/oauthstate"
	"zensync/internal/shared/objstore"
	"zensync/internal/shared/storage"
)

// Handler API Server 核心
type Handler struct {
	cfg     *config.Config
	store   storage.Store
	objects *objstore.Client
	rdb     *redis.Client
	metrics *Metrics

	started time.Time
}

// NewHandler 创建 API Server；rdb 可为 nil（聊天退化为进程内广播，
// OAuth state 退化为仅签名校验）
func NewHandler(cfg *config.Config, store storage.Store, objects *objstore.Client, rdb *redis.Client) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   store,
		objects: objects,
		rdb:     rdb,
		metrics: NewMetrics("zensync"),
		started: time.Now(),
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查与指标:
//   - GET  /health
//   - GET  /metrics
//
// 用户 (auth):
//   - POST /userApi/user        - 注册
//   - POST /userApi/login       - 登录
//   - POST /userApi/refresh     - 刷新令牌
//   - GET  /userApi/me          - 当前用户
//   - PUT  /userApi/profile     - 更新资料
//
// 项目 (project):
//   - POST /projectApi/project                     - 创建项目（multipart 上传）
//   - GET  /projectApi/projects?creator=           - 创作者的项目
//   - GET  /projectApi/editor-projects?email=      - 剪辑师的项目
//   - GET  /projectApi/project/{id}                - 项目详情
//   - DELETE /projectApi/project/{id}              - 删除项目（含对象清理）
//   - PUT  /projectApi/project/{id}/status         - 状态流转
//   - POST /projectApi/add-video-response/{id}     - 提交成片
//   - GET  /projectApi/project-responses/{id}      - 成片列表
//
// 访问请求 (access):
//   - POST /projectApi/project/{id}/request-access
//   - GET  /projectApi/access-requests
//   - PUT  /projectApi/access-requests/{id}/approve
//   - PUT  /projectApi/access-requests/{id}/reject
//
// 评价 (review):
//   - POST /reviewApi/submit-review
//   - GET  /reviewApi/reviews?editor=
//
// 通知 (notification):
//   - GET  /notificationApi/notifications
//   - POST /notificationApi/notifications
//   - PUT  /notificationApi/notifications/{id}/read
//
// 聊天 (chat):
//   - GET  /chatApi/messages?project=
//   - POST /chatApi/messages
//   - GET  /ws/chat/{projectId}   - WebSocket
//
// YouTube (youtube):
//   - GET    /projectApi/auth/youtube/init
//   - GET    /projectApi/auth/youtube/callback
//   - GET    /projectApi/youtube/status
//   - DELETE /projectApi/youtube/disconnect
//   - POST   /projectApi/youtube/upload/{projectId}
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	authCfg := auth.DefaultConfig(h.cfg.JWTSecret)

	// 用户接口
	authHandler := auth.NewHandler(h.store, authCfg)
	authHandler.RegisterRoutes(mux)

	// 项目接口
	projectHandler := project.NewHandler(h.store, h.objects, h.cfg.MaxUploadSize)
	projectHandler.RegisterRoutes(mux)

	// 访问请求接口
	accessHandler := access.NewHandler(h.store)
	accessHandler.RegisterRoutes(mux)

	// 评价接口
	reviewHandler := review.NewHandler(h.store)
	reviewHandler.RegisterRoutes(mux)

	// 通知接口
	notificationHandler := notification.NewHandler(h.store)
	notificationHandler.RegisterRoutes(mux)

	// 聊天接口（REST 部分走认证中间件，WebSocket 在顶层路由单独挂载）
	gateway := chat.NewGateway(h.store, authCfg, h.rdb)
	chatHandler := chat.NewHandler(h.store, gateway)
	chatHandler.RegisterRoutes(mux)

	// YouTube 接口
	states := oauthstate.NewStore(h.rdb, h.cfg.JWTSecret)
	ytHandler := youtube.NewHandler(h.store, h.objects, states, youtube.NewUploader(), h.cfg.Google, h.cfg.ClientURL)
	ytHandler.RegisterRoutes(mux)

	// 应用指标中间件到 REST API
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用认证中间件
	authedHandler := auth.Middleware(authCfg)(apiHandler)

	// 应用 CORS 中间件
	corsHandler := corsMiddleware(h.cfg.ClientURL, authedHandler)

	// 顶层路由，WebSocket 绕过 metrics 中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /ws/chat/{projectId}", h.metrics.WSMiddleware(gateway.HandleWebSocket))
	topMux.Handle("/", corsHandler)

	return topMux
}

// Health 服务健康检查
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"env":     h.cfg.Env,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"version": Version,
	})
}

// Version 构建版本，由 -ldflags 注入
var Version = "dev"

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(clientURL string, next http.Handler) http.Handler {
	origin := clientURL
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
