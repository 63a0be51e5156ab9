// Package storage 定义存储层抽象接口与领域错误
//
// 调用方（handler 包）只依赖本包接口，具体实现在 mongostore 子包中，
// 初始化时通过依赖注入传入。驱动实现负责把底层错误转换为这里的领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrConflict 状态冲突（例如重复批准、项目已关闭）
	ErrConflict = errors.New("conflict: entity state does not allow this operation")

	// ErrDuplicate 唯一键冲突（重复 email、重复 pending 请求）
	ErrDuplicate = errors.New("duplicate: entity already exists")
)
