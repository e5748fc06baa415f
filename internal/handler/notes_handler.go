package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notekeep/internal/errors"
	"notekeep/internal/service"
)

// NotesHandler handles note endpoints. All routes require a valid bearer
// token; the user ID comes from its claims, never from the request body.
type NotesHandler struct {
	notesService service.NotesService
}

// NewNotesHandler creates a new notes handler.
func NewNotesHandler(notesService service.NotesService) *NotesHandler {
	return &NotesHandler{notesService: notesService}
}

// CreateNoteRequest represents a note creation request.
type CreateNoteRequest struct {
	Title        string     `json:"title" validate:"required"`
	Content      string     `json:"content"`
	IsPinned     bool       `json:"isPinned"`
	IsArchived   bool       `json:"isArchived"`
	Tags         []string   `json:"tags"`
	ReminderDate *time.Time `json:"reminderDate"`
}

// UpdateNoteRequest is a partial update: absent fields stay untouched.
// ReminderDate is raw JSON so an explicit null (clear the reminder) can be
// told apart from the field being omitted.
type UpdateNoteRequest struct {
	Title        *string         `json:"title"`
	Content      *string         `json:"content"`
	IsPinned     *bool           `json:"isPinned"`
	IsArchived   *bool           `json:"isArchived"`
	Tags         []string        `json:"tags"`
	ReminderDate json.RawMessage `json:"reminderDate"`
}

// Create godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNoteRequest true "Note data"
// @Success 201 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes [post]
func (h *NotesHandler) Create(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.notesService.Create(c.Request().Context(), userID, service.CreateNoteInput{
		Title:        req.Title,
		Content:      req.Content,
		IsPinned:     req.IsPinned,
		IsArchived:   req.IsArchived,
		Tags:         req.Tags,
		ReminderDate: req.ReminderDate,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, note)
}

// List godoc
// @Summary List notes
// @Description Returns the caller's notes, pinned first then most recently
// @Description updated. Archived notes only appear when onlyArchived=true.
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring match on title or content"
// @Param isPinned query bool false "Filter by pinned flag"
// @Param onlyArchived query bool false "Show archived notes instead of active ones"
// @Param tagId query string false "Restrict to notes carrying this tag"
// @Param page query int false "1-indexed page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} service.NoteList
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /notes [get]
func (h *NotesHandler) List(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	params := service.ListNotesParams{
		Search: c.QueryParam("search"),
		Page:   1,
		Limit:  10,
	}

	if v := c.QueryParam("isPinned"); v != "" {
		pinned, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid isPinned")
		}
		params.IsPinned = &pinned
	}
	if v := c.QueryParam("onlyArchived"); v != "" {
		// "onlyArchived=false" is the same as leaving it out.
		archived, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid onlyArchived")
		}
		params.OnlyArchived = archived
	}
	if v := c.QueryParam("tagId"); v != "" {
		tagID, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid tagId")
		}
		params.TagID = &tagID
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		params.Page = page
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		params.Limit = limit
	}

	list, err := h.notesService.FindAll(c.Request().Context(), userID, params)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get a note by id
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [get]
func (h *NotesHandler) Get(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}

	note, err := h.notesService.FindOne(c.Request().Context(), userID, noteID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, note)
}

// Update godoc
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param request body UpdateNoteRequest true "Fields to change"
// @Success 200 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [put]
func (h *NotesHandler) Update(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}

	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input := service.UpdateNoteInput{
		Title:      req.Title,
		Content:    req.Content,
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
		Tags:       req.Tags,
	}
	if req.ReminderDate != nil {
		input.ReminderDateSet = true
		// null and "" both clear the reminder.
		if !bytes.Equal(req.ReminderDate, []byte("null")) && !bytes.Equal(req.ReminderDate, []byte(`""`)) {
			var when time.Time
			if err := json.Unmarshal(req.ReminderDate, &when); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid reminderDate")
			}
			input.ReminderDate = &when
		}
	}

	note, err := h.notesService.Update(c.Request().Context(), userID, noteID, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, note)
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 204 {string} string ""
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
func (h *NotesHandler) Delete(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}

	if err := h.notesService.Remove(c.Request().Context(), userID, noteID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
