package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, display_name, photo_url, password_hash, is_admin, created_at, updated_at`

// UserRepository 负责 catalog.users 的读写。
type UserRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewUserRepository 构造用户仓储。
func NewUserRepository(db *pgxpool.Pool, logger log.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// Create 插入用户，邮箱统一小写；邮箱重复返回 ErrEmailTaken。
func (r *UserRepository) Create(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `INSERT INTO catalog.users (id, email, display_name, photo_url, password_hash, is_admin)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + userColumns
	rows, err := pick(r.db, sess).Query(ctx, query,
		user.ID, normalizeEmail(user.Email), user.DisplayName, user.PhotoURL, user.PasswordHash, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.User])
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByID 按主键查询用户。
func (r *UserRepository) FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error) {
	return r.findOne(ctx, sess, "SELECT "+userColumns+" FROM catalog.users WHERE id = $1", id)
}

// LockByID 以 FOR UPDATE 锁定用户行；持锁期间其他事务无法为该用户新增评分或评论。
func (r *UserRepository) LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error) {
	return r.findOne(ctx, sess, "SELECT "+userColumns+" FROM catalog.users WHERE id = $1 FOR UPDATE", id)
}

// FindByEmail 按邮箱查询用户（大小写不敏感）。
func (r *UserRepository) FindByEmail(ctx context.Context, sess txmanager.Session, email string) (*po.User, error) {
	return r.findOne(ctx, sess, "SELECT "+userColumns+" FROM catalog.users WHERE email = $1", normalizeEmail(email))
}

func (r *UserRepository) findOne(ctx context.Context, sess txmanager.Session, query string, arg any) (*po.User, error) {
	rows, err := pick(r.db, sess).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// List 返回全部用户，按注册时间排序。
func (r *UserRepository) List(ctx context.Context, sess txmanager.Session) ([]*po.User, error) {
	rows, err := pick(r.db, sess).Query(ctx, "SELECT "+userColumns+" FROM catalog.users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.User])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

// Update 覆盖展示名、头像与管理员标记。
func (r *UserRepository) Update(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error) {
	query := `UPDATE catalog.users SET display_name = $2, photo_url = $3, is_admin = $4
	WHERE id = $1
	RETURNING ` + userColumns
	rows, err := pick(r.db, sess).Query(ctx, query, user.ID, user.DisplayName, user.PhotoURL, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete 删除用户，评分与评论随外键级联删除。
func (r *UserRepository) Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) error {
	tag, err := pick(r.db, sess).Exec(ctx, "DELETE FROM catalog.users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count 返回用户总数。
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM catalog.users").Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
