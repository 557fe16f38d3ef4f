package users

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// GetUsage godoc
// @Summary Get the account's usage this month
// @Description Returns the tier, the current period's generation count, the tier ceiling and the reset time
// @Tags users
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/usage [get]
// @Security BearerAuth
func GetUsage(reader UsageReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		snap, err := reader.Snapshot(c.Request.Context(), accountID)
		if err != nil {
			if stderrors.Is(err, accounts.ErrNotFound) {
				errors.NotFound(c, "account")
				return
			}

			errors.InternalError(c, "failed to fetch usage data", err)
			return
		}

		c.JSON(http.StatusOK, snap)
	}
}
