// Package mongostore 错误映射单元测试
package mongostore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"zensync/internal/shared/storage"
)

func TestWrapError(t *testing.T) {
	if wrapError(nil) != nil {
		t.Error("nil 应透传为 nil")
	}
	if !errors.Is(wrapError(mongo.ErrNoDocuments), storage.ErrNotFound) {
		t.Error("ErrNoDocuments 应映射为 ErrNotFound")
	}

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	if !errors.Is(wrapError(dup), storage.ErrDuplicate) {
		t.Error("唯一键冲突应映射为 ErrDuplicate")
	}

	other := errors.New("connection reset")
	if !errors.Is(wrapError(other), other) {
		t.Error("未知错误应原样返回")
	}
}
