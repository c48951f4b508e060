package model

import "time"

// Todo represents a to-do item in the database.
// Owner is the owner's username, filled in by joined reads.
type Todo struct {
	ID          int64
	UserID      int64
	Owner       string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID returns the id of the user that created the item.
func (t *Todo) OwnerID() int64 {
	return t.UserID
}

// TodoRequest is the body of create and full-replace requests.
// Ownership is never read from the body.
type TodoRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Completed   bool   `json:"completed"`
}

// TodoPatchRequest is the body of a partial update. Nil fields are left unchanged.
type TodoPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoFilter narrows a list query.
type TodoFilter struct {
	Completed *bool
}

// TodoResponse represents a to-do item in API responses.
type TodoResponse struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts a stored item into its API shape.
func (t *Todo) ToResponse() TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Owner:       t.Owner,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
