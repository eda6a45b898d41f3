package services

import (
	"context"
	stderrors "errors"

	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// 对外错误原因码，随 kratos Error 一并返回，HTTP 层只暴露 message。
const (
	ReasonValidation        = "VALIDATION_FAILED"
	ReasonContentNotFound   = "CONTENT_NOT_FOUND"
	ReasonRatingNotFound    = "RATING_NOT_FOUND"
	ReasonCommentNotFound   = "COMMENT_NOT_FOUND"
	ReasonUserNotFound      = "USER_NOT_FOUND"
	ReasonEmailTaken        = "EMAIL_TAKEN"
	ReasonInvalidLogin      = "INVALID_CREDENTIALS"
	ReasonAuthRequired      = "AUTH_REQUIRED"
	ReasonForbidden         = "FORBIDDEN"
	ReasonTimeout           = "REQUEST_TIMEOUT"
	ReasonInternal          = "INTERNAL"
	ReasonUploadUnavailable = "UPLOAD_UNAVAILABLE"
)

// 常用业务错误。
var (
	ErrContentNotFound   = errors.NotFound(ReasonContentNotFound, "content not found")
	ErrRatingNotFound    = errors.NotFound(ReasonRatingNotFound, "rating not found")
	ErrCommentNotFound   = errors.NotFound(ReasonCommentNotFound, "comment not found")
	ErrUserNotFound      = errors.NotFound(ReasonUserNotFound, "user not found")
	ErrEmailTaken        = errors.Conflict(ReasonEmailTaken, "email already registered")
	ErrInvalidLogin      = errors.Unauthorized(ReasonInvalidLogin, "invalid email or password")
	ErrAuthRequired      = errors.Unauthorized(ReasonAuthRequired, "authentication required")
	ErrForbidden         = errors.Forbidden(ReasonForbidden, "not allowed to modify this resource")
	ErrUploadUnavailable = errors.ServiceUnavailable(ReasonUploadUnavailable, "poster upload is not configured")
)

// validationError 构造 400 错误。
func validationError(msg string) error {
	return errors.BadRequest(ReasonValidation, msg)
}

// mapRepoError 将仓储哨兵错误与超时统一映射为 kratos 错误；其余错误记录日志后返回 500。
func mapRepoError(ctx context.Context, logger *log.Helper, op string, err error) error {
	if err == nil {
		return nil
	}
	var kerr *errors.Error
	if stderrors.As(err, &kerr) {
		return kerr
	}
	switch {
	case stderrors.Is(err, repositories.ErrContentNotFound):
		return ErrContentNotFound
	case stderrors.Is(err, repositories.ErrRatingNotFound):
		return ErrRatingNotFound
	case stderrors.Is(err, repositories.ErrCommentNotFound):
		return ErrCommentNotFound
	case stderrors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case stderrors.Is(err, repositories.ErrEmailTaken):
		return ErrEmailTaken
	case stderrors.Is(err, context.DeadlineExceeded):
		logger.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonTimeout, op+" timeout")
	}
	logger.WithContext(ctx).Errorf("%s failed: err=%v", op, err)
	return errors.InternalServer(ReasonInternal, op+" failed").WithCause(err)
}

func errorsIs(err, target error) bool {
	return stderrors.Is(err, target)
}
