package repositories

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier 抽象 pgxpool.Pool 与 pgx.Tx 的公共查询能力。
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pick 处于事务时返回 tx 绑定的查询对象，否则回落到连接池。
func pick(pool *pgxpool.Pool, sess txmanager.Session) querier {
	if sess != nil {
		if tx := sess.Tx(); tx != nil {
			return tx
		}
	}
	return pool
}

// pgErrorCode 提取 PostgreSQL 错误码，非 PgError 时返回空串。
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
