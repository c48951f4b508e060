package handler

import (
	"net/http"
	"strconv"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/middleware"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/validate"
	"github.com/go-chi/chi/v5"
)

// TodoHandler handles HTTP requests for to-do items.
type TodoHandler struct {
	service *service.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{service: svc}
}

// HandleList handles GET /api/todos/ requests. An optional completed=true|false
// query parameter filters the list.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter model.TodoFilter
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, validate.Single("completed", "Must be a valid boolean."))
			return
		}
		filter.Completed = &completed
	}

	items, err := h.service.List(r.Context(), middleware.IdentityFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// HandleCreate handles POST /api/todos/ requests.
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.TodoRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/todos/{id}/ requests.
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), middleware.IdentityFromContext(r.Context()), todoID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleReplace handles PUT /api/todos/{id}/ requests.
func (h *TodoHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req model.TodoRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Replace(r.Context(), middleware.IdentityFromContext(r.Context()), todoID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandlePatch handles PATCH /api/todos/{id}/ requests.
func (h *TodoHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var req model.TodoPatchRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Patch(r.Context(), middleware.IdentityFromContext(r.Context()), todoID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/todos/{id}/ requests.
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), todoID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// todoIDParam parses the {id} path segment. Anything that is not a positive
// integer cannot name an item, so it is answered with 404.
func todoIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, detailResponse(msgNotFound))
		return 0, false
	}
	return id, true
}
