// Package metadata 提供调用方身份在 Context 中的存取工具，供中间件、控制器与服务层共享。
package metadata

import (
	"context"

	"github.com/google/uuid"
)

// Role 调用方角色。
type Role string

// 角色常量；admin 继承 user，user 继承 anonymous。
const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// Identity 描述经认证中间件解析出的调用方。
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// Authenticated 判断是否为已登录用户。
func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil && i.Role != "" && i.Role != RoleAnonymous
}

// IsAdmin 判断是否为管理员。
func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == RoleAdmin
}

// Anonymous 返回匿名身份。
func Anonymous() Identity {
	return Identity{Role: RoleAnonymous}
}

type ctxKey struct{}

// Inject 将 Identity 注入 Context。
func Inject(ctx context.Context, id Identity) context.Context {
	if id.Role == "" {
		id.Role = RoleAnonymous
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext 读取上游注入的 Identity，缺失时返回匿名身份。
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous()
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Anonymous()
	}
	return id
}

// CurrentUser 返回已登录用户，匿名时 ok 为 false。
func CurrentUser(ctx context.Context) (Identity, bool) {
	id := FromContext(ctx)
	return id, id.Authenticated()
}

// IsAdmin 判断 Context 中的调用方是否为管理员。
func IsAdmin(ctx context.Context) bool {
	return FromContext(ctx).IsAdmin()
}
