package po

import (
	"time"

	"github.com/google/uuid"
)

// User 表示 catalog.users 表的数据库实体。
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	PhotoURL     *string   `db:"photo_url"`
	PasswordHash *string   `db:"password_hash"` // 为空表示账号无法密码登录
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
