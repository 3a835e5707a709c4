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
)

type PostStorage struct {
	db     trmpgx.Tr
	getter *trmpgx.CtxGetter
}

func NewPostStorage(db trmpgx.Tr, getter *trmpgx.CtxGetter) *PostStorage {
	return &PostStorage{
		db:     db,
		getter: getter,
	}
}

var postReturning = "RETURNING " + strings.Join(tableinfo.PostColumns, ", ")

// listPrealloc bounds the result slice preallocation independently of the requested limit.
const listPrealloc = 64

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	query, args, err := sq.
		Insert(tableinfo.PostsTableName).
		Columns(
			tableinfo.PostTitleColumn,
			tableinfo.PostContentColumn,
			tableinfo.PostImagePathColumn,
		).
		Values(in.Title, in.Content, imagePathOrDefault(in.ImagePath)).
		Suffix(postReturning).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Post{}, fmt.Errorf("exec error creating post: %w", err)
	}
	return out, nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	query, args, err := sq.
		Select(tableinfo.PostColumns...).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec select post by id: %w", err)
	}
	return out, nil
}

// listPostsQueryBuilder applies filter, sort and page. Ties are broken by id in the same direction.
func listPostsQueryBuilder(params storage.ListPostsParams) sq.SelectBuilder {
	qb := sq.
		Select(tableinfo.PostColumns...).
		From(tableinfo.PostsTableName)

	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{tableinfo.PostTitleColumn: pattern},
			sq.ILike{tableinfo.PostContentColumn: pattern},
		})
	}

	dir := "ASC"
	if params.Descending {
		dir = "DESC"
	}
	col := sortColumn(params.SortBy)
	orderBy := []string{col + " " + dir}
	if col != tableinfo.PostIDColumn {
		orderBy = append(orderBy, tableinfo.PostIDColumn+" "+dir)
	}

	return qb.
		OrderBy(orderBy...).
		Offset(uint64(max(params.Offset, 0))).
		Limit(uint64(max(params.Limit, 0))).
		PlaceholderFormat(sq.Dollar)
}

func (s *PostStorage) ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, error) {
	query, args, err := listPostsQueryBuilder(params).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec error selecting posts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Post, 0, min(max(params.Limit, 0), listPrealloc))
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *PostStorage) UpdatePost(ctx context.Context, in model.Post) (model.Post, error) {
	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostTitleColumn, in.Title).
		Set(tableinfo.PostContentColumn, in.Content).
		Set(tableinfo.PostImagePathColumn, imagePathOrDefault(in.ImagePath)).
		Where(sq.Eq{tableinfo.PostIDColumn: in.ID}).
		Suffix(postReturning).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	return s.mutateOne(ctx, query, args, "update post")
}

func (s *PostStorage) SetPostImage(ctx context.Context, postID int64, imagePath string) (model.Post, error) {
	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostImagePathColumn, imagePathOrDefault(imagePath)).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix(postReturning).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	return s.mutateOne(ctx, query, args, "update image_path")
}

func (s *PostStorage) DeletePost(ctx context.Context, postID int64) (model.Post, error) {
	query, args, err := sq.
		Delete(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix(postReturning).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", storage.ErrBuildingQuery, err)
	}

	return s.mutateOne(ctx, query, args, "delete post")
}

func (s *PostStorage) mutateOne(ctx context.Context, query string, args []any, op string) (model.Post, error) {
	tr := s.getter.DefaultTrOrDB(ctx, s.db)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec %s: %w", op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.ImagePath,
		&p.CreatedAt,
	); err != nil {
		return model.Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// byteCollation orders text by byte value, matching the in-memory store.
const byteCollation = ` COLLATE "C"`

func sortColumn(f storage.SortField) string {
	switch f {
	case storage.SortByTitle:
		return tableinfo.PostTitleColumn + byteCollation
	case storage.SortByContent:
		return tableinfo.PostContentColumn + byteCollation
	default:
		return tableinfo.PostIDColumn
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func imagePathOrDefault(p string) string {
	if p == "" {
		return model.DefaultImagePath
	}
	return p
}
