package vo

import (
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

// User 用户视图，不包含密码哈希。
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    *string   `json:"photoUrl"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUser 从持久化实体构造视图。
func NewUser(u *po.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

// NewUserList 批量转换。
func NewUserList(users []*po.User) []*User {
	out := make([]*User, 0, len(users))
	for _, u := range users {
		if v := NewUser(u); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// AuthSession 登录/注册成功后返回的令牌与用户信息。
type AuthSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
