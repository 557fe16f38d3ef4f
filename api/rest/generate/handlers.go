package generate

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// Handler godoc
// @Summary Generate content ideas
// @Description Consumes one generation from the monthly quota and returns content ideas for the brief
// @Tags generate
// @Accept json
// @Produce json
// @Param request body Request true "Generator form"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.QuotaErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/generate [post]
// @Security BearerAuth
func Handler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, brief, ok := bindBrief(c)
		if !ok {
			return
		}

		result, decision, ok := run(c, deps, accountID, brief)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, Response{
			Ideas:    result.Ideas,
			Usage:    usage.FromDecision(decision),
			Fallback: result.Fallback,
			Model:    result.Model,
		})
	}
}

// CandidatesHandler godoc
// @Summary Generate content ideas (candidates envelope)
// @Description Same as /generate, answered in the model's candidates envelope for older clients
// @Tags generate
// @Accept json
// @Produce json
// @Param request body Request true "Generator form"
// @Success 200 {object} generator.CandidatesResponse
// @Failure 402 {object} errors.QuotaErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/generate/candidates [post]
// @Security BearerAuth
func CandidatesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, brief, ok := bindBrief(c)
		if !ok {
			return
		}

		result, _, ok := run(c, deps, accountID, brief)
		if !ok {
			return
		}

		envelope, err := generator.Candidates(result.Ideas)
		if err != nil {
			errors.InternalError(c, "failed to encode ideas", err)
			return
		}

		c.JSON(http.StatusOK, envelope)
	}
}

func bindBrief(c *gin.Context) (string, generator.Brief, bool) {
	accountID, ok := auth.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return "", generator.Brief{}, false
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.ValidationError(c, err)
		return "", generator.Brief{}, false
	}

	brief := req.Brief()

	// rejected before the quota is touched
	if err := brief.Validate(); err != nil {
		errors.BadRequest(c, "unknown content type", err)
		return "", generator.Brief{}, false
	}

	return accountID, brief, true
}

// consumes quota, generates and records history. on false the response is written
func run(c *gin.Context, deps Deps, accountID string, brief generator.Brief) (*generator.Result, quota.Decision, bool) {
	ctx := c.Request.Context()

	decision, err := deps.Quota.Consume(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, accounts.ErrNotFound) {
			errors.NotFound(c, "account")
			return nil, quota.Decision{}, false
		}

		errors.InternalError(c, "failed to check usage", err)
		return nil, quota.Decision{}, false
	}

	if !decision.Allowed {
		logger.Info("generation denied, quota exhausted",
			"account_id", accountID,
			"tier", decision.Tier,
			"count", decision.Count,
		)

		errors.QuotaExceeded(c, errors.QuotaErrorResponse{
			Tier:      decision.Tier,
			Count:     decision.Count,
			Limit:     int64(decision.Ceiling),
			Period:    decision.PeriodKey.String(),
			ResetAt:   decision.ResetAt.Format(time.RFC3339),
			UpgradeTo: quota.NextTier(decision.Tier),
		})

		return nil, quota.Decision{}, false
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	result, err := deps.Generator.Generate(genCtx, brief)
	if err != nil {
		refund(ctx, deps, accountID, decision)

		if stderrors.Is(err, generator.ErrUpstream) {
			errors.BadGateway(c, "idea generation failed, please try again", err)
			return nil, quota.Decision{}, false
		}

		errors.InternalError(c, "idea generation failed", err)
		return nil, quota.Decision{}, false
	}

	if deps.History != nil {
		if _, err := deps.History.AddHistory(ctx, accountID, brief, result.Ideas, result.Fallback); err != nil {
			logger.WarnErr(err, "failed to record generation history",
				"account_id", accountID,
			)
		}
	}

	return result, decision, true
}

// gives the consumed generation back. the store may be down, in which case
// the account keeps the charge until the next reset
func refund(ctx context.Context, deps Deps, accountID string, decision quota.Decision) {
	_, err := deps.Quota.Refund(context.WithoutCancel(ctx), accountID, decision)
	switch {
	case err == nil:
	case stderrors.Is(err, quota.ErrStalePeriod):
		logger.Info("generation failed after the period ended, charge kept",
			"account_id", accountID,
			"period", decision.PeriodKey.String(),
		)
	default:
		logger.WarnErr(err, "failed to refund generation",
			"account_id", accountID,
		)
	}
}
