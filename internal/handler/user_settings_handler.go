package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/response"
	"github.com/smb564/21-points/internal/service"
	"github.com/smb564/21-points/internal/validator"
)

const entityName = "userSettings"

// UserSettingsService is what the REST handler needs from the service layer.
type UserSettingsService interface {
	Create(ctx context.Context, in *model.UserSettings) (*model.UserSettings, error)
	Update(ctx context.Context, in *model.UserSettings) (*model.UserSettings, bool, error)
	List(ctx context.Context, p model.Pageable) ([]model.UserSettings, int, error)
	Get(ctx context.Context, id int64) (*model.UserSettings, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, p model.Pageable) ([]model.UserSettings, int, error)
	SearchByID(ctx context.Context, id int64, query string) ([]model.UserSettings, error)
}

type UserSettingsHandler struct {
	svc    UserSettingsService
	alerts response.Alerts
	log    zerolog.Logger
}

func NewUserSettingsHandler(svc UserSettingsService, namespace string, log zerolog.Logger) *UserSettingsHandler {
	return &UserSettingsHandler{
		svc:    svc,
		alerts: response.Alerts{Namespace: namespace},
		log:    log.With().Str("component", "user_settings_handler").Logger(),
	}
}

// Create godoc
// POST /api/user-settings
func (h *UserSettingsHandler) Create(c *gin.Context) {
	var req model.CreateUserSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	in := req.ToEntity()
	h.log.Debug().Stringer("user_settings", in).Msg("REST request to save UserSettings")

	saved, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, saved)
}

// Update godoc
// PUT /api/user-settings
// PUT /api/user-settings/:id
func (h *UserSettingsHandler) Update(c *gin.Context) {
	var req model.UpdateUserSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if raw := c.Param("id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		if req.ID != id {
			h.alerts.Failure(c, entityName, "idmismatch")
			response.Fail(c, http.StatusBadRequest, response.ErrIDMismatch)
			return
		}
	}

	in := req.ToEntity()
	h.log.Debug().Stringer("user_settings", in).Msg("REST request to update UserSettings")

	saved, created, err := h.svc.Update(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		h.created(c, saved)
		return
	}
	h.alerts.Updated(c, entityName, saved.ID)
	response.Entity(c, http.StatusOK, saved)
}

// GetAll godoc
// GET /api/user-settings?page=&size=&sort=
func (h *UserSettingsHandler) GetAll(c *gin.Context) {
	p, err := parsePageable(c)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"detail": err.Error()})
		return
	}

	h.log.Debug().Int("page", p.Page).Int("size", p.Size).Msg("REST request to get a page of UserSettings")

	items, total, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.PaginationHeaders(c, p.Page, p.Size, total)
	response.Entity(c, http.StatusOK, nonNil(items))
}

// GetByID godoc
// GET /api/user-settings/:id
func (h *UserSettingsHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	h.log.Debug().Int64("id", id).Msg("REST request to get UserSettings")

	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Entity(c, http.StatusOK, s)
}

// Delete godoc
// DELETE /api/user-settings/:id
func (h *UserSettingsHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	h.log.Debug().Int64("id", id).Msg("REST request to delete UserSettings")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.alerts.Deleted(c, entityName, id)
	c.Status(http.StatusOK)
}

// Search godoc
// GET /api/_search/user-settings?query=&page=&size=&sort=
func (h *UserSettingsHandler) Search(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuery)
		return
	}
	p, err := parsePageable(c)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"detail": err.Error()})
		return
	}

	h.log.Debug().Str("query", query).Msg("REST request to search for a page of UserSettings")

	items, total, err := h.svc.Search(c.Request.Context(), query, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.PaginationHeaders(c, p.Page, p.Size, total)
	response.Entity(c, http.StatusOK, nonNil(items))
}

// SearchByID godoc
// GET /api/_search/user-settings/:id?query=
func (h *UserSettingsHandler) SearchByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	items, err := h.svc.SearchByID(c.Request.Context(), id, c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Entity(c, http.StatusOK, nonNil(items))
}

func (h *UserSettingsHandler) created(c *gin.Context, saved *model.UserSettings) {
	c.Header("Location", fmt.Sprintf("/api/user-settings/%d", saved.ID))
	h.alerts.Created(c, entityName, saved.ID)
	response.Entity(c, http.StatusCreated, saved)
}

// fail maps service errors onto responses.
func (h *UserSettingsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIDExists):
		h.alerts.Failure(c, entityName, "idexists")
		response.Fail(c, http.StatusBadRequest, response.ErrIDExists)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateUser):
		h.alerts.Failure(c, entityName, "userexists")
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Logger(c).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func nonNil(items []model.UserSettings) []model.UserSettings {
	if items == nil {
		return []model.UserSettings{}
	}
	return items
}
