package dto

import (
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"
)

// RegisterRequest 对应 POST /api/auth/register。
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=80"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// ToInput 转换为服务层输入。
func (r *RegisterRequest) ToInput() (services.RegisterInput, error) {
	if err := Validate(r); err != nil {
		return services.RegisterInput{}, err
	}
	return services.RegisterInput{Email: r.Email, DisplayName: r.DisplayName, Password: r.Password}, nil
}

// LoginRequest 对应 POST /api/auth/login。
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest 对应 POST /api/admin/users。
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	DisplayName string  `json:"displayName" validate:"required,max=80"`
	Password    string  `json:"password" validate:"omitempty,min=8,max=72"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
	IsAdmin     bool    `json:"isAdmin"`
}

// ToInput 转换为服务层输入。
func (r *CreateUserRequest) ToInput() (services.CreateUserInput, error) {
	if err := Validate(r); err != nil {
		return services.CreateUserInput{}, err
	}
	return services.CreateUserInput{
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Password:    r.Password,
		PhotoURL:    r.PhotoURL,
		IsAdmin:     r.IsAdmin,
	}, nil
}

// UpdateUserRequest 对应 PUT /api/admin/users/{id}，缺省字段保持不变。
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=80"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
	IsAdmin     *bool   `json:"isAdmin"`
}

// PosterUploadRequest 对应 POST /api/admin/posters/upload-url。
type PosterUploadRequest struct {
	Type        string `json:"type" validate:"omitempty,oneof=movie series"`
	ContentType string `json:"contentType" validate:"required"`
	FileName    string `json:"fileName" validate:"max=255"`
}
