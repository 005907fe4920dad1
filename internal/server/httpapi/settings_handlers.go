package httpapi

import (
	"net/http"
	"time"

	"github.com/basekit-io/basekit/internal/server/models"
)

type rolePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (a *API) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.roles.List(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	items := make([]rolePayload, 0, len(roles))
	for _, role := range roles {
		items = append(items, rolePayload{ID: role.ID, Name: role.Name, Description: role.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type settingPayload struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSettingPayload(s *models.Setting) settingPayload {
	return settingPayload{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

func (a *API) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.settings.List(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	items := make([]settingPayload, 0, len(settings))
	for _, s := range settings {
		items = append(items, toSettingPayload(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type putSettingRequest struct {
	Value string `json:"value"`
}

func (a *API) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	if _, err := a.requireAdmin(r.Context()); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	key := r.PathValue("key")
	var req putSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	stored, err := a.settings.Set(r.Context(), key, req.Value)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingPayload(stored))
}
