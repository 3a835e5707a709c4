package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"barefoot/internal/adapter/out/storage"
	"barefoot/internal/model"
	"barefoot/internal/service"
	"barefoot/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type UserStorage struct {
	db     trmpgx.Tr
	getter *trmpgx.CtxGetter
}

func NewUserStorage(db trmpgx.Tr, getter *trmpgx.CtxGetter) *UserStorage {
	return &UserStorage{
		db:     db,
		getter: getter,
	}
}

func (s *UserStorage) CreateUser(ctx context.Context, in model.User) (model.User, error) {
	query, args, err := sq.
		Insert(tableinfo.UsersTableName).
		Columns(
			tableinfo.UserIDColumn,
			tableinfo.UserEmailColumn,
			tableinfo.UserPasswordHashColumn,
		).
		Values(in.ID, in.Email, in.PasswordHash).
		Suffix("RETURNING " + strings.Join(tableinfo.UserColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanUser(tr.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, service.ErrDuplicateIdentity
		}
		return model.User{}, fmt.Errorf("exec error creating user: %w", err)
	}
	return out, nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	query, args, err := sq.
		Select(tableinfo.UserColumns...).
		From(tableinfo.UsersTableName).
		Where(sq.Eq{tableinfo.UserEmailColumn: email}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanUser(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, service.ErrNotFound
		}
		return model.User{}, fmt.Errorf("exec select user by email: %w", err)
	}
	return out, nil
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
