package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrElementNotFound   = errors.New("challenge element not found")
	ErrSnapshotNotFound  = errors.New("progress snapshot not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvariantViolated = errors.New("progress invariant violated")
)

// StorageError 底层读写失败，可重试
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// RecomputeError 进度重算失败。包装 StorageError 或中途发现的不变式
// 破坏（例如脏数据导致的负数计数）；触发重算的完成事件本身不回滚，
// 快照停留在上一次成功的值，后续重算可恢复。
type RecomputeError struct {
	UserID uint
	Err    error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("recompute progress for user %d: %v", e.UserID, e.Err)
}

func (e *RecomputeError) Unwrap() error {
	return e.Err
}

func NewRecomputeError(userID uint, err error) *RecomputeError {
	return &RecomputeError{UserID: userID, Err: err}
}
