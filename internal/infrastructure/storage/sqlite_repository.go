package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"DealScanner/internal/domain"
	"DealScanner/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS posts (
	post_id      TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL,
	created_at   TEXT,
	summary_sent INTEGER NOT NULL DEFAULT 0,
	inserted_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

var postColumns = []string{"post_id", "title", "url", "created_at", "summary_sent", "inserted_at"}

// SQLiteRepository persists posts in a local SQLite database. Inserts and the
// sent-flag transition are single conditional statements, so concurrent runs
// cannot double-insert a post or revert its flag.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.PostRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at path and
// ensures the posts table exists.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// SQLite allows a single writer; one connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// InsertIfAbsent inserts the post unless its ID already exists. The conflict
// clause makes the existence check and the write one atomic statement.
func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, post domain.Post) (bool, error) {
	query, args, err := sq.Insert("posts").
		Columns(postColumns...).
		Values(post.ID, post.Title, post.URL, post.CreatedAt, false, r.now().UTC()).
		Suffix("ON CONFLICT(post_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert post %s: %w", post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert post %s: rows affected: %w", post.ID, err)
	}

	return affected > 0, nil
}

// InsertBatch applies InsertIfAbsent to each post in input order and returns
// exactly the newly inserted subset, relative order preserved.
func (r *SQLiteRepository) InsertBatch(ctx context.Context, posts []domain.Post) ([]domain.Post, error) {
	inserted := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		ok, err := r.InsertIfAbsent(ctx, post)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted = append(inserted, post)
		}
	}
	return inserted, nil
}

// ExistsAndSent reports whether the post exists and its summary was already
// sent.
func (r *SQLiteRepository) ExistsAndSent(ctx context.Context, postID string) (bool, error) {
	query, args, err := sq.Select("COUNT(1)").
		From("posts").
		Where(sq.Eq{"post_id": postID, "summary_sent": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check post %s: %w", postID, err)
	}

	return count > 0, nil
}

// MarkSent flips the summary_sent flag. The conditional update returns false
// both for a missing ID and for a post already sent; the flag never reverts.
func (r *SQLiteRepository) MarkSent(ctx context.Context, postID string) (bool, error) {
	query, args, err := sq.Update("posts").
		Set("summary_sent", true).
		Where(sq.Eq{"post_id": postID, "summary_sent": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark-sent: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark post %s sent: %w", postID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark post %s sent: rows affected: %w", postID, err)
	}

	return affected > 0, nil
}

// ListUnsent returns posts whose summary was not delivered yet, oldest
// insertion first, so delivery order matches discovery order.
func (r *SQLiteRepository) ListUnsent(ctx context.Context) ([]domain.Post, error) {
	builder := sq.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"summary_sent": false}).
		OrderBy("inserted_at ASC", "rowid ASC")
	return r.queryPosts(ctx, builder)
}

// ListAll returns every stored post, newest insertion first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]domain.Post, error) {
	builder := sq.Select(postColumns...).
		From("posts").
		OrderBy("inserted_at DESC", "rowid DESC")
	return r.queryPosts(ctx, builder)
}

func (r *SQLiteRepository) queryPosts(ctx context.Context, builder sq.SelectBuilder) ([]domain.Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.URL, &post.CreatedAt, &post.SummarySent, &post.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return posts, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
