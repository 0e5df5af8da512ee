package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
)

const taskColumns = "id, created_at, updated_at, title, description"

// PostgresRepo stores tasks as rows of the tasks table.
type PostgresRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool: pool,
		now:  model.Now,
	}
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, notFound("get", id)
	}
	if err != nil {
		return model.Task{}, r.mapError("get", id, err)
	}
	return t, nil
}

func (r *PostgresRepo) Create(ctx context.Context, in model.CreateInput) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}

	t := model.NewTask(in, r.now())
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, created_at, updated_at, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		t.ID, t.CreatedAt, t.UpdatedAt, t.Title, t.Description,
	))
	if err != nil {
		return model.Task{}, r.mapError("create", t.ID, err)
	}
	return created, nil
}

// Update locks the row, merges the patch and writes only the columns the
// patch touches. Concurrent updates serialize on the row lock and the last
// one to commit wins.
func (r *PostgresRepo) Update(ctx context.Context, id string, in model.UpdateInput) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}

	var updated model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		existing, err := scanTask(tx.QueryRow(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE id = $1
			FOR UPDATE
		`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("update", id)
		}
		if err != nil {
			return r.mapError("update", id, err)
		}

		merged, err := model.Apply(existing, in, r.now())
		if err != nil {
			return err
		}

		query, args := updateStatement(id, in, merged)
		updated, err = scanTask(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return r.mapError("update", id, err)
		}
		return nil
	})

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, ErrorNotFound), errors.Is(err, ErrorBackendUnavailable), errors.Is(err, model.ErrValidation):
		return model.Task{}, err
	default:
		// begin or commit failed
		return model.Task{}, r.mapError("update", id, err)
	}
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return r.mapError("delete", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("delete", id)
	}
	return nil
}

// updateStatement always sets updated_at and adds a column only when its
// patch field changes it. A null title changes nothing.
func updateStatement(id string, in model.UpdateInput, t model.Task) (string, []any) {
	args := []any{id, t.UpdatedAt}
	sets := []string{"updated_at = $2"}

	if in.Title.IsSet() {
		args = append(args, t.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if in.Description.IsChanged() {
		args = append(args, t.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 RETURNING " + taskColumns
	return query, args
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, err
}

func (r *PostgresRepo) mapError(op, id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		err = fmt.Errorf("postgres %s %s: %w", pgErr.Code, pgErr.ConstraintName, err)
	}
	return backendErr(op, id, err)
}
