package auth

import (
	stderrors "errors"
	"net/http"
	"slices"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

var validProviders = []string{"google", "github", "apple"}

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication flow with specified provider (google, github, apple)
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github, apple)
// @Success 302 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(validProviders, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		// set provider in query for gothic
		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Returns the account and a JWT token
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google, github, apple)
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(accountStore AccountStore, issuer TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(validProviders, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.BadRequest(c, "authentication failed", err)
			return
		}

		account, err := accountStore.FindOrCreateByProvider(
			c.Request.Context(),
			gothUser.Provider,
			gothUser.UserID,
			gothUser.Email,
			gothUser.Name,
			gothUser.AvatarURL,
		)
		if err != nil {
			errors.InternalError(c, "failed to create account", err)
			return
		}

		token, err := issuer.Issue(account.ID, account.Email)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		logger.Info("account signed in",
			"account_id", account.ID,
			"provider", provider,
		)

		c.JSON(http.StatusOK, AuthResponse{
			Account: account,
			Token:   token,
		})
	}
}

// GetCurrentAccountHandler godoc
// @Summary Get current account
// @Tags auth
// @Produce json
// @Success 200 {object} AccountResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentAccountHandler(accountStore AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		account, err := accountStore.FindByID(c.Request.Context(), accountID)
		if err != nil {
			if stderrors.Is(err, accounts.ErrNotFound) {
				errors.NotFound(c, "account")
				return
			}

			errors.InternalError(c, "failed to load account", err)
			return
		}

		c.JSON(http.StatusOK, AccountResponse{Account: account})
	}
}

// UpdateProfileHandler godoc
// @Summary Update account profile
// @Description Update authenticated account's name and avatar
// @Tags auth
// @Accept json
// @Produce json
// @Param request body accounts.UpdateProfileRequest true "Profile update"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [put]
// @Security BearerAuth
func UpdateProfileHandler(accountStore AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req accounts.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		account, err := accountStore.UpdateProfile(c.Request.Context(), accountID, req.Name, req.AvatarURL)
		if err != nil {
			if stderrors.Is(err, accounts.ErrNotFound) {
				errors.NotFound(c, "account")
				return
			}

			errors.InternalError(c, "failed to update profile", err)
			return
		}

		c.JSON(http.StatusOK, AccountResponse{Account: account})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the OAuth session cookie. API tokens expire on their own
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/logout [post]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.ErrorErr(err, "failed to logout from gothic session")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}
