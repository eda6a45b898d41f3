package repositories

import "errors"

// 仓储层哨兵错误，由 Service 层映射为对外错误码。
var (
	ErrContentNotFound   = errors.New("content not found")
	ErrRatingNotFound    = errors.New("rating not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrReferenceNotFound = errors.New("referenced row not found")
)
