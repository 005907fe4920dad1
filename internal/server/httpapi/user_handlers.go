package httpapi

import (
	"net/http"
	"strconv"

	"github.com/basekit-io/basekit/internal/server/services"
)

type listUsersResponse struct {
	Items   []userPayload `json:"items"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAdmin(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	page := intQueryParam(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := intQueryParam(q.Get("per_page"), services.DefaultPerPage)
	if perPage <= 0 {
		perPage = services.DefaultPerPage
	}
	if perPage > services.MaxPerPage {
		perPage = services.MaxPerPage
	}

	users, total, err := a.users.List(r.Context(), page, perPage, q.Get("q"))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	items := make([]userPayload, 0, len(users))
	for _, u := range users {
		items = append(items, toUserPayload(u))
	}
	writeJSON(w, http.StatusOK, listUsersResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.requireSelfOrAdmin(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := a.requireAdmin(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.Role == nil && req.IsActive == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "nothing to update")
		return
	}

	user, err := a.users.Update(r.Context(), id, services.UpdateUserParams{
		Name:     req.Name,
		RoleName: req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := a.requireAdmin(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	if err := a.users.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := requireSelf(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	url, err := a.avatars.UploadURL(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"upload_url": url})
}

func (a *API) handleAvatarDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.requireSelfOrAdmin(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	url, err := a.avatars.DownloadURL(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"download_url": url})
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
