package dto

import (
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/google/uuid"
)

// CreateCommentRequest 对应 POST /api/comments。
type CreateCommentRequest struct {
	UserID string `json:"userId"`
	ContentTarget
	Content string `json:"content" validate:"required"`
}

// ToInput 转换为服务层输入；长度上限由服务层按字符数校验。
func (r *CreateCommentRequest) ToInput(caller uuid.UUID, isAdmin bool) (services.CreateCommentInput, error) {
	if err := Validate(r); err != nil {
		return services.CreateCommentInput{}, err
	}
	ref, err := r.Ref()
	if err != nil {
		return services.CreateCommentInput{}, err
	}
	userID, err := ResolveSubject(r.UserID, caller, isAdmin)
	if err != nil {
		return services.CreateCommentInput{}, err
	}
	return services.CreateCommentInput{UserID: userID, Ref: ref, Content: r.Content}, nil
}
