// Package chat 项目聊天 - WebSocket 网关与 HTTP 处理
//
// 网关管理按项目分组的 WebSocket 连接。配置了 Redis 时消息经
// pub/sub 扇出（多实例部署下各实例都能收到），否则退化为进程内广播。
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"zensync/internal/apiserver/auth"
	"zensync/internal/shared/model"
	"zensync/internal/shared/storage"
)

// Store 聊天领域需要的存储接口
type Store interface {
	storage.ChatStore
	GetProject(ctx context.Context, id string) (*model.Project, error)
}

var errNotAccessToken = errors.New("not an access token")

// upgrader WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sendBuffer 每个客户端的发送队列长度
const sendBuffer = 32

// client 单个 WebSocket 客户端
//
// 连接上的所有写入（消息、pong、协议 ping、关闭帧）都由 writePump
// 这一个 goroutine 完成；其他 goroutine 只往 send 队列投递。
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// enqueue 非阻塞投递；队列满返回 false
func (c *client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// writePump 独占连接写端：串行发送队列内容并定期 ping
func (c *client) writePump() {
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Gateway WebSocket 聊天网关
//
// 连接按项目 ID 分组。rdb 为 nil 时消息只在本进程内广播。
type Gateway struct {
	store   Store
	authCfg auth.Config
	rdb     *redis.Client

	clients map[string]map[*client]bool
	subs    map[string]context.CancelFunc
	mu      sync.RWMutex
}

// NewGateway 创建聊天网关实例
func NewGateway(store Store, authCfg auth.Config, rdb *redis.Client) *Gateway {
	return &Gateway{
		store:   store,
		authCfg: authCfg,
		rdb:     rdb,
		clients: make(map[string]map[*client]bool),
		subs:    make(map[string]context.CancelFunc),
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/chat/{projectId}", g.HandleWebSocket)
}

// HandleWebSocket 处理聊天 WebSocket 连接
//
// 路由: GET /ws/chat/{projectId}?token=<access token>
//
// 浏览器的 WebSocket API 不支持自定义请求头，令牌通过查询参数传递。
// 只有项目创作者和被指派的剪辑师允许接入。
//
// 客户端消息：
//
//	聊天：{"message": "..."}
//	心跳：{"type": "ping"} -> 响应 {"type": "pong"}
//
// 推送消息：{"type": "message", "data": {...ChatMessage...}}
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		http.Error(w, "project id required", http.StatusBadRequest)
		return
	}

	user, err := g.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	project, err := g.store.GetProject(r.Context(), projectID)
	if err != nil || project == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if project.UserCreated != user.Email && project.EditorEmail != user.Email {
		http.Error(w, "not a project participant", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[chat] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	g.addClient(projectID, c)
	defer g.removeClient(projectID, c)

	log.Printf("[chat] %s connected to project %s", user.Email, projectID)

	go c.writePump()
	g.readPump(r.Context(), c, projectID, user.Email)
}

// authenticate 从查询参数或 Authorization 头解析访问令牌
func (g *Gateway) authenticate(r *http.Request) (*auth.AuthUser, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := auth.ParseToken(g.authCfg, token)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, errNotAccessToken
	}
	return &auth.AuthUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		UserType: model.UserType(claims.UserType),
	}, nil
}

// addClient 添加客户端连接，项目的第一个连接会启动 Redis 订阅
func (g *Gateway) addClient(projectID string, c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.clients[projectID] == nil {
		g.clients[projectID] = make(map[*client]bool)
		if g.rdb != nil {
			ctx, cancel := context.WithCancel(context.Background())
			g.subs[projectID] = cancel
			go g.subscribeLoop(ctx, projectID)
		}
	}
	g.clients[projectID][c] = true
}

// removeClient 移除客户端连接，项目的最后一个连接断开时停止订阅
//
// 每个客户端只在连接 handler 退出时移除一次，send 队列在这里关闭，
// writePump 清空余量后结束。
func (g *Gateway) removeClient(projectID string, c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	clients, ok := g.clients[projectID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(g.clients, projectID)
		if cancel, ok := g.subs[projectID]; ok {
			cancel()
			delete(g.subs, projectID)
		}
	}
}

// readPump 读取客户端消息：心跳直接回队列，聊天消息落库后扇出
func (g *Gateway) readPump(ctx context.Context, c *client, projectID, sender string) {
	conn := c.conn
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[chat] WebSocket read error: %v", err)
			}
			return
		}

		var req struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &req) != nil {
			continue
		}

		if req.Type == "ping" {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			c.enqueue([]byte(`{"type":"pong"}`))
			continue
		}

		text := strings.TrimSpace(req.Message)
		if text == "" {
			continue
		}

		msg := &model.ChatMessage{
			ID:        generateID("msg"),
			ProjectID: projectID,
			Message:   text,
			Sender:    sender,
			Type:      model.MessageText,
			CreatedAt: time.Now(),
		}
		if err := g.store.CreateChatMessage(ctx, msg); err != nil {
			log.Printf("[chat] CreateChatMessage error: %v", err)
			continue
		}
		g.publish(ctx, msg)
	}
}

// publish 扇出消息：有 Redis 走 pub/sub，否则进程内广播
func (g *Gateway) publish(ctx context.Context, msg *model.ChatMessage) {
	if g.rdb == nil {
		g.Broadcast(msg)
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := g.rdb.Publish(ctx, chatChannel(msg.ProjectID), payload).Err(); err != nil {
		log.Printf("[chat] Redis publish error: %v", err)
		g.Broadcast(msg)
	}
}

// subscribeLoop 订阅项目频道并把收到的消息广播给本进程的客户端
func (g *Gateway) subscribeLoop(ctx context.Context, projectID string) {
	pubsub := g.rdb.Subscribe(ctx, chatChannel(projectID))
	defer pubsub.Close()

	log.Printf("[chat] subscribed to project %s", projectID)

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var msg model.ChatMessage
			if json.Unmarshal([]byte(raw.Payload), &msg) != nil {
				continue
			}
			g.Broadcast(&msg)
		}
	}
}

// Broadcast 把消息投递到项目所有本地客户端的发送队列
//
// 只入队不写连接，写入统一由各连接的 writePump 完成。
// 队列满说明消费端跟不上，断开该连接（readPump 随即出错清理）。
func (g *Gateway) Broadcast(msg *model.ChatMessage) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": "message",
		"data": msg,
	})
	if err != nil {
		return
	}

	var slow []*client
	g.mu.RLock()
	for c := range g.clients[msg.ProjectID] {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	g.mu.RUnlock()

	for _, c := range slow {
		log.Printf("[chat] dropping slow client on project %s", msg.ProjectID)
		c.conn.Close()
	}
}

// chatChannel 项目聊天的 Redis 频道名
func chatChannel(projectID string) string {
	return "zensync:chat:" + projectID
}
