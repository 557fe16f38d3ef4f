package ideas

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/generator"
	"github.com/gin-gonic/gin"
)

// ListHistoryHandler godoc
// @Summary List generation history
// @Description The account's most recent generations, newest first
// @Tags ideas
// @Produce json
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/ideas/history [get]
// @Security BearerAuth
func ListHistoryHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		history, err := store.ListHistory(c.Request.Context(), accountID)
		if err != nil {
			errors.InternalError(c, "failed to list history", err)
			return
		}

		c.JSON(http.StatusOK, HistoryResponse{History: history})
	}
}

// StatsHandler godoc
// @Summary Generation statistics
// @Description Totals over the retained history: ideas generated, top platform, most used type, sessions
// @Tags ideas
// @Produce json
// @Success 200 {object} ideas.Stats
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/ideas/stats [get]
// @Security BearerAuth
func StatsHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		history, err := store.ListHistory(c.Request.Context(), accountID)
		if err != nil {
			errors.InternalError(c, "failed to load history", err)
			return
		}

		c.JSON(http.StatusOK, ideas.ComputeStats(history))
	}
}

// ListSavedHandler godoc
// @Summary List saved ideas
// @Tags ideas
// @Produce json
// @Success 200 {object} SavedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/ideas/saved [get]
// @Security BearerAuth
func ListSavedHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		saved, err := store.ListSaved(c.Request.Context(), accountID)
		if err != nil {
			errors.InternalError(c, "failed to list saved ideas", err)
			return
		}

		c.JSON(http.StatusOK, SavedResponse{Saved: saved})
	}
}

// ToggleSavedHandler godoc
// @Summary Save or unsave an idea
// @Description Saves the idea, or removes it when it is already saved
// @Tags ideas
// @Accept json
// @Produce json
// @Param request body ToggleRequest true "Idea"
// @Success 200 {object} ToggleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/ideas/saved [post]
// @Security BearerAuth
func ToggleSavedHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req ToggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		idea := generator.Idea{
			ID:          req.ID,
			Title:       req.Title,
			Description: req.Description,
			Platforms:   nonNil(req.Platforms),
			Hashtags:    nonNil(req.Hashtags),
			Type:        req.Type,
			Timestamp:   time.Now().UTC(),
			ContentType: req.ContentType,
		}

		saved, err := store.ToggleSaved(c.Request.Context(), accountID, idea)
		if err != nil {
			errors.InternalError(c, "failed to toggle saved idea", err)
			return
		}

		c.JSON(http.StatusOK, ToggleResponse{ID: idea.ID, Saved: saved})
	}
}

// RemoveSavedHandler godoc
// @Summary Remove a saved idea
// @Tags ideas
// @Param id path string true "Idea ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/ideas/saved/{id} [delete]
// @Security BearerAuth
func RemoveSavedHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if err := store.RemoveSaved(c.Request.Context(), accountID, c.Param("id")); err != nil {
			if stderrors.Is(err, ideas.ErrNotFound) {
				errors.NotFound(c, "saved idea")
				return
			}

			errors.InternalError(c, "failed to remove saved idea", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// ExportSavedHandler godoc
// @Summary Export saved ideas
// @Description Downloads the saved ideas as txt, csv or json
// @Tags ideas
// @Produce plain
// @Param format query string false "Export format" Enums(txt, csv, json)
// @Success 200 {string} string "Export file"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/ideas/saved/export [get]
// @Security BearerAuth
func ExportSavedHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		format, err := ideas.ParseFormat(c.DefaultQuery("format", string(ideas.FormatTXT)))
		if err != nil {
			errors.BadRequest(c, "format must be txt, csv or json", err)
			return
		}

		saved, err := store.ListSaved(c.Request.Context(), accountID)
		if err != nil {
			errors.InternalError(c, "failed to list saved ideas", err)
			return
		}

		// rendered before any header is written so a failure can still be a 500
		var buf bytes.Buffer
		if err := ideas.Export(&buf, format, saved, time.Now()); err != nil {
			errors.InternalError(c, "failed to export saved ideas", err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
