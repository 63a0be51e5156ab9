// Package oauthstate OAuth 回调 state 的签发与校验
//
// state = base64url(nonce|user_id|expires_unix) + "." + hex(HMAC-SHA256)。
// 签名保证 state 未被篡改且带过期时间；配置了 Redis 时 nonce 额外落库，
// Consume 走 GETDEL 实现严格一次性（重放返回 ErrStateUsed）。
// 没有 Redis 时只做签名 + 过期校验。
package oauthstate

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidState state 格式错误或签名不匹配
	ErrInvalidState = errors.New("oauthstate: invalid state")
	// ErrStateExpired state 已过期
	ErrStateExpired = errors.New("oauthstate: state expired")
	// ErrStateUsed state 已被消费（重放）
	ErrStateUsed = errors.New("oauthstate: state already used")
)

// DefaultTTL state 有效期
const DefaultTTL = 10 * time.Minute

const keyPrefix = "zensync:oauth:state:"

// Store OAuth state 签发器
type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewStore 创建 state 签发器；rdb 可为 nil
func NewStore(rdb *redis.Client, secret string) *Store {
	return &Store{
		rdb:    rdb,
		secret: []byte(secret),
		ttl:    DefaultTTL,
	}
}

// Issue 为用户签发一个新的 state
func (s *Store) Issue(ctx context.Context, userID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("oauthstate: generate nonce: %w", err)
	}

	expires := time.Now().Add(s.ttl).Unix()
	payload := hex.EncodeToString(nonce) + "|" + userID + "|" + strconv.FormatInt(expires, 10)
	state := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + s.sign(payload)

	if s.rdb != nil {
		key := keyPrefix + hex.EncodeToString(nonce)
		if err := s.rdb.Set(ctx, key, userID, s.ttl).Err(); err != nil {
			return "", fmt.Errorf("oauthstate: store nonce: %w", err)
		}
	}
	return state, nil
}

// Consume 校验 state 并返回签发它的用户 ID
//
// Redis 在场时 nonce 被原子删除，同一 state 第二次 Consume 返回 ErrStateUsed。
func (s *Store) Consume(ctx context.Context, state string) (string, error) {
	encoded, sig, ok := strings.Cut(state, ".")
	if !ok {
		return "", ErrInvalidState
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidState
	}
	payload := string(raw)
	if !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return "", ErrInvalidState
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return "", ErrInvalidState
	}
	nonce, userID := parts[0], parts[1]
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", ErrInvalidState
	}
	if time.Now().Unix() > expires {
		return "", ErrStateExpired
	}

	if s.rdb != nil {
		stored, err := s.rdb.GetDel(ctx, keyPrefix+nonce).Result()
		if errors.Is(err, redis.Nil) {
			return "", ErrStateUsed
		}
		if err != nil {
			return "", fmt.Errorf("oauthstate: check nonce: %w", err)
		}
		if stored != userID {
			return "", ErrInvalidState
		}
	}
	return userID, nil
}

// sign 计算 payload 的 HMAC-SHA256 十六进制签名
func (s *Store) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
