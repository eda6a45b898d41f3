package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/auth"
	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	// bcrypt 只使用前 72 字节。
	maxPasswordBytes   = 72
	maxDisplayNameRune = 80
)

// UserStore 用户持久化行为。
type UserStore interface {
	Create(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error)
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error)
	LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error)
	FindByEmail(ctx context.Context, sess txmanager.Session, email string) (*po.User, error)
	List(ctx context.Context, sess txmanager.Session) ([]*po.User, error)
	Update(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error)
	Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) error
}

// UserRatingLookup 删除用户前定位其评过分的内容。
type UserRatingLookup interface {
	ContentIDsByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]uuid.UUID, error)
}

// AggregateRecomputer 锁定内容并重算评分聚合。
type AggregateRecomputer interface {
	LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
	RecomputeRatingAggregate(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.RatingAggregate, error)
}

// TokenIssuer 为登录用户签发访问令牌。
type TokenIssuer interface {
	Issue(id metadata.Identity) (string, time.Time, error)
}

// RegisterInput 注册输入。
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// CreateUserInput 管理员创建用户；Password 为空时该账号无法密码登录。
type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	PhotoURL    *string
	IsAdmin     bool
}

// UpdateUserInput 管理员修改用户，nil 字段保持不变。
type UpdateUserInput struct {
	UserID      uuid.UUID
	DisplayName *string
	PhotoURL    *string
	IsAdmin     *bool
}

// UserService 注册、登录与管理员账号管理。
type UserService struct {
	users     UserStore
	ratings   UserRatingLookup
	contents  AggregateRecomputer
	tokens    TokenIssuer
	txManager txmanager.Manager
	validate  *validator.Validate
	log       *log.Helper
}

// NewUserService 构造用户服务。
func NewUserService(users UserStore, ratings UserRatingLookup, contents AggregateRecomputer, tokens TokenIssuer, tx txmanager.Manager, logger log.Logger) *UserService {
	return &UserService{
		users:     users,
		ratings:   ratings,
		contents:  contents,
		tokens:    tokens,
		txManager: tx,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log.NewHelper(logger),
	}
}

// Register 注册普通用户并直接返回登录态。
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*vo.AuthSession, error) {
	user, err := s.createUser(ctx, CreateUserInput{
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Password:    input.Password,
	}, true)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Infof("Register: user_id=%s", user.ID)
	return s.issueSession(ctx, user)
}

// Login 校验邮箱与密码，返回令牌。邮箱不存在与密码错误返回同一错误。
func (s *UserService) Login(ctx context.Context, email, password string) (*vo.AuthSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	var user *po.User
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		user, err = s.users.FindByEmail(txCtx, sess, email)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, mapRepoError(ctx, s.log, "login", err)
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidLogin
	}
	if err := auth.CheckPassword(*user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.WithContext(ctx).Infof("login rejected: user_id=%s", user.ID)
			return nil, ErrInvalidLogin
		}
		return nil, mapRepoError(ctx, s.log, "login", err)
	}
	return s.issueSession(ctx, user)
}

// Me 返回当前登录用户。
func (s *UserService) Me(ctx context.Context) (*vo.User, error) {
	id, ok := metadata.CurrentUser(ctx)
	if !ok {
		return nil, ErrAuthRequired
	}
	return s.GetUser(ctx, id.UserID)
}

// GetUser 按 ID 返回用户。
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*vo.User, error) {
	var user *po.User
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		user, err = s.users.FindByID(txCtx, sess, userID)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "get user", err)
	}
	return vo.NewUser(user), nil
}

// ListUsers 返回全部用户。
func (s *UserService) ListUsers(ctx context.Context) ([]*vo.User, error) {
	var users []*po.User
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		users, err = s.users.List(txCtx, sess)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list users", err)
	}
	return vo.NewUserList(users), nil
}

// CreateUser 管理员创建账号。
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*vo.User, error) {
	user, err := s.createUser(ctx, input, false)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Infof("CreateUser: user_id=%s admin=%v", user.ID, user.IsAdmin)
	return vo.NewUser(user), nil
}

// UpdateUser 管理员修改展示名、头像或管理员标记。
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*vo.User, error) {
	if input.DisplayName == nil && input.PhotoURL == nil && input.IsAdmin == nil {
		return nil, validationError("no fields to update")
	}
	if input.DisplayName != nil {
		if err := validateDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if caller, ok := metadata.CurrentUser(ctx); ok && caller.UserID == input.UserID && input.IsAdmin != nil && !*input.IsAdmin {
		return nil, validationError("administrators cannot revoke their own admin role")
	}

	var updated *po.User
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		user, err := s.users.FindByID(txCtx, sess, input.UserID)
		if err != nil {
			return err
		}
		if input.DisplayName != nil {
			user.DisplayName = strings.TrimSpace(*input.DisplayName)
		}
		if input.PhotoURL != nil {
			user.PhotoURL = trimmedOrNil(input.PhotoURL)
		}
		if input.IsAdmin != nil {
			user.IsAdmin = *input.IsAdmin
		}
		updated, err = s.users.Update(txCtx, sess, user)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "update user", err)
	}
	s.log.WithContext(ctx).Infof("UpdateUser: user_id=%s admin=%v", updated.ID, updated.IsAdmin)
	return vo.NewUser(updated), nil
}

// DeleteUser 删除用户；其评分随外键级联删除，受影响内容的聚合在同一事务内重算。
// 先锁用户行再读取其评过分的内容：并发插入的评分要么已提交并被读到，要么因外键失效而失败。
// 内容行按 ID 升序加锁，与评分写入的加锁顺序一致，避免死锁。
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if caller, ok := metadata.CurrentUser(ctx); ok && caller.UserID == userID {
		return validationError("administrators cannot delete their own account")
	}

	var affected []uuid.UUID
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, err := s.users.LockByID(txCtx, sess, userID); err != nil {
			return err
		}
		ids, err := s.ratings.ContentIDsByUser(txCtx, sess, userID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := s.contents.LockByID(txCtx, sess, id); err != nil {
				return err
			}
		}
		if err := s.users.Delete(txCtx, sess, userID); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := s.contents.RecomputeRatingAggregate(txCtx, sess, id); err != nil {
				s.log.WithContext(txCtx).Errorf("rating aggregate recompute failed, rolling back user delete: content=%s err=%v", id, err)
				return err
			}
		}
		affected = ids
		return nil
	})
	if err != nil {
		return mapRepoError(ctx, s.log, "delete user", err)
	}
	s.log.WithContext(ctx).Infof("DeleteUser: user_id=%s recomputed_content=%d", userID, len(affected))
	return nil
}

func (s *UserService) createUser(ctx context.Context, input CreateUserInput, requirePassword bool) (*po.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, validationError("a valid email is required")
	}
	if err := validateDisplayName(input.DisplayName); err != nil {
		return nil, err
	}

	var hash *string
	if input.Password != "" || requirePassword {
		if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordBytes {
			return nil, validationError("password must be between 8 and 72 characters")
		}
		h, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, mapRepoError(ctx, s.log, "hash password", err)
		}
		hash = &h
	}

	var created *po.User
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		created, err = s.users.Create(txCtx, sess, &po.User{
			Email:        email,
			DisplayName:  strings.TrimSpace(input.DisplayName),
			PhotoURL:     trimmedOrNil(input.PhotoURL),
			PasswordHash: hash,
			IsAdmin:      input.IsAdmin,
		})
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "create user", err)
	}
	return created, nil
}

func (s *UserService) issueSession(ctx context.Context, user *po.User) (*vo.AuthSession, error) {
	role := metadata.RoleUser
	if user.IsAdmin {
		role = metadata.RoleAdmin
	}
	token, expiresAt, err := s.tokens.Issue(metadata.Identity{UserID: user.ID, Email: user.Email, Role: role})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "issue token", err)
	}
	return &vo.AuthSession{Token: token, ExpiresAt: expiresAt, User: vo.NewUser(user)}, nil
}

func validateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return validationError("displayName is required")
	}
	if len([]rune(trimmed)) > maxDisplayNameRune {
		return validationError("displayName is too long")
	}
	return nil
}
