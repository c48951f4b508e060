package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
)

var ErrTodoNotFound = errors.New("todo not found")

// TodoRepository handles to-do item persistence operations.
// It does not filter reads by owner; ownership is decided by the caller.
type TodoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

const selectTodo = `SELECT t.id, t.user_id, u.username, t.title, t.description, t.completed, t.created_at, t.updated_at
	FROM todos t JOIN users u ON u.id = t.user_id`

// Create inserts a new item and reloads it so timestamps and owner name are set.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	query := `INSERT INTO todos (user_id, title, description, completed) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, todo.UserID, todo.Title, todo.Description, todo.Completed)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading todo id: %w", err)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*todo = *created
	return nil
}

// GetByID retrieves an item regardless of owner.
func (r *TodoRepository) GetByID(ctx context.Context, id int64) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx, selectTodo+` WHERE t.id = ?`, id).Scan(
		&todo.ID, &todo.UserID, &todo.Owner, &todo.Title, &todo.Description,
		&todo.Completed, &todo.CreatedAt, &todo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("querying todo: %w", err)
	}

	return todo, nil
}

// ListByUser retrieves a user's items, newest first.
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error) {
	query := selectTodo + ` WHERE t.user_id = ?`
	args := []any{userID}
	if filter.Completed != nil {
		query += ` AND t.completed = ?`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Owner, &t.Title, &t.Description,
			&t.Completed, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// Update writes title, description and completion. The owner column is never
// written; user_id in the WHERE clause keeps a stale check from touching
// another user's row.
func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	query := `UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	if err := expectRow(result); err != nil {
		return err
	}

	updated, err := r.GetByID(ctx, todo.ID)
	if err != nil {
		return err
	}
	*todo = *updated
	return nil
}

// Delete removes an item owned by userID.
func (r *TodoRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}
