package service

import (
	"context"
	"errors"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/permission"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/repository"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/validate"
)

var ErrTodoNotFound = errors.New("todo not found")

// TodoStore persists to-do items. Reads by id are not scoped to an owner.
type TodoStore interface {
	Create(ctx context.Context, todo *model.Todo) error
	GetByID(ctx context.Context, id int64) (*model.Todo, error)
	ListByUser(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, id, userID int64) error
}

// TodoService handles to-do item business logic for one requester at a time.
type TodoService struct {
	repo TodoStore
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo TodoStore) *TodoService {
	return &TodoService{repo: repo}
}

// List returns the requester's items only.
func (s *TodoService) List(ctx context.Context, id model.Identity, filter model.TodoFilter) ([]model.TodoResponse, error) {
	if err := permission.Authenticated(id, nil); err != nil {
		return nil, err
	}

	todos, err := s.repo.ListByUser(ctx, id.UserID, filter)
	if err != nil {
		return nil, err
	}
	return todosToResponse(todos), nil
}

// Create stores a new item owned by the requester.
func (s *TodoService) Create(ctx context.Context, id model.Identity, req model.TodoRequest) (model.TodoResponse, error) {
	if err := permission.Authenticated(id, nil); err != nil {
		return model.TodoResponse{}, err
	}
	if err := validate.Todo(req); err != nil {
		return model.TodoResponse{}, err
	}

	todo := &model.Todo{
		UserID:      id.UserID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return model.TodoResponse{}, err
	}
	return todo.ToResponse(), nil
}

// Get returns a single item the requester owns.
func (s *TodoService) Get(ctx context.Context, id model.Identity, todoID int64) (model.TodoResponse, error) {
	todo, err := s.load(ctx, id, todoID)
	if err != nil {
		return model.TodoResponse{}, err
	}
	return todo.ToResponse(), nil
}

// Replace overwrites every editable field of an item the requester owns.
func (s *TodoService) Replace(ctx context.Context, id model.Identity, todoID int64, req model.TodoRequest) (model.TodoResponse, error) {
	if err := validate.Todo(req); err != nil {
		return model.TodoResponse{}, err
	}

	todo, err := s.load(ctx, id, todoID)
	if err != nil {
		return model.TodoResponse{}, err
	}
	todo.Title = req.Title
	todo.Description = req.Description
	todo.Completed = req.Completed

	return s.save(ctx, todo)
}

// Patch changes only the fields present in req.
func (s *TodoService) Patch(ctx context.Context, id model.Identity, todoID int64, req model.TodoPatchRequest) (model.TodoResponse, error) {
	if err := validate.TodoPatch(req); err != nil {
		return model.TodoResponse{}, err
	}

	todo, err := s.load(ctx, id, todoID)
	if err != nil {
		return model.TodoResponse{}, err
	}
	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	return s.save(ctx, todo)
}

// Delete removes an item the requester owns.
func (s *TodoService) Delete(ctx context.Context, id model.Identity, todoID int64) error {
	todo, err := s.load(ctx, id, todoID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, todo.ID, todo.UserID)
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return err
}

// load fetches the item fresh and runs the object checks against it.
func (s *TodoService) load(ctx context.Context, id model.Identity, todoID int64) (*model.Todo, error) {
	if err := permission.Authenticated(id, nil); err != nil {
		return nil, err
	}

	todo, err := s.repo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	if err := permission.Require(id, todo, permission.ObjectChecks...); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) save(ctx context.Context, todo *model.Todo) (model.TodoResponse, error) {
	if err := s.repo.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return model.TodoResponse{}, ErrTodoNotFound
		}
		return model.TodoResponse{}, err
	}
	return todo.ToResponse(), nil
}

// todosToResponse converts stored items to their API shape. The result is
// never nil so an empty list encodes as [].
func todosToResponse(todos []model.Todo) []model.TodoResponse {
	result := make([]model.TodoResponse, len(todos))
	for i := range todos {
		result[i] = todos[i].ToResponse()
	}
	return result
}
