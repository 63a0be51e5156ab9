package oauthstate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// 无 Redis 时只做签名 + 过期校验

func TestIssueConsume_RoundTrip(t *testing.T) {
	s := NewStore(nil, "test-secret")
	ctx := context.Background()

	state, err := s.Issue(ctx, "usr-abc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := s.Consume(ctx, state)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if userID != "usr-abc123" {
		t.Errorf("userID = %q, 期望 usr-abc123", userID)
	}
}

func TestConsume_TamperedSignature(t *testing.T) {
	s := NewStore(nil, "test-secret")
	ctx := context.Background()

	state, err := s.Issue(ctx, "usr-abc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// 篡改签名的最后一个字符
	last := state[len(state)-1]
	replacement := "0"
	if last == '0' {
		replacement = "1"
	}
	tampered := state[:len(state)-1] + replacement

	if _, err := s.Consume(ctx, tampered); !errors.Is(err, ErrInvalidState) {
		t.Errorf("篡改签名的 state err = %v, 期望 ErrInvalidState", err)
	}
}

func TestConsume_WrongSecret(t *testing.T) {
	issuer := NewStore(nil, "secret-a")
	verifier := NewStore(nil, "secret-b")
	ctx := context.Background()

	state, err := issuer.Issue(ctx, "usr-abc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Consume(ctx, state); !errors.Is(err, ErrInvalidState) {
		t.Errorf("错误密钥 err = %v, 期望 ErrInvalidState", err)
	}
}

func TestConsume_Expired(t *testing.T) {
	s := NewStore(nil, "test-secret")
	s.ttl = -1 * time.Minute // 签发即过期
	ctx := context.Background()

	state, err := s.Issue(ctx, "usr-abc123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := s.Consume(ctx, state); !errors.Is(err, ErrStateExpired) {
		t.Errorf("过期 state err = %v, 期望 ErrStateExpired", err)
	}
}

func TestConsume_Malformed(t *testing.T) {
	s := NewStore(nil, "test-secret")
	ctx := context.Background()

	for _, state := range []string{"", "no-dot-here", "not-base64!!.deadbeef", "YQ.deadbeef"} {
		if _, err := s.Consume(ctx, state); !errors.Is(err, ErrInvalidState) {
			t.Errorf("Consume(%q) err = %v, 期望 ErrInvalidState", state, err)
		}
	}
}

func TestIssue_StatesUnique(t *testing.T) {
	s := NewStore(nil, "test-secret")
	ctx := context.Background()

	a, _ := s.Issue(ctx, "usr-abc123")
	b, _ := s.Issue(ctx, "usr-abc123")
	if a == b {
		t.Error("同一用户两次签发的 state 不应相同")
	}
	if !strings.Contains(a, ".") {
		t.Errorf("state 缺少签名分隔符: %q", a)
	}
}
