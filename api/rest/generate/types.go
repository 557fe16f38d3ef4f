package generate

import (
	"context"
	"time"

	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// the generator form. empty fields fall back to generic defaults
type Request struct {
	Industry       string `json:"industry" binding:"max=200"`
	TargetAudience string `json:"targetAudience" binding:"max=200"`
	Services       string `json:"services" binding:"max=500"`
	ContentType    string `json:"contentType" binding:"max=20"`
}

func (r Request) Brief() generator.Brief {
	return generator.Brief{
		Industry:       r.Industry,
		TargetAudience: r.TargetAudience,
		Services:       r.Services,
		ContentType:    r.ContentType,
	}
}

type Response struct {
	Ideas    []generator.Idea `json:"ideas"`
	Usage    usage.Snapshot   `json:"usage"`
	Fallback bool             `json:"fallback"`
	Model    string           `json:"model"`
}

// gates generations against the monthly quota
type QuotaGate interface {
	Consume(ctx context.Context, accountID string) (quota.Decision, error)
	Refund(ctx context.Context, accountID string, d quota.Decision) (*usage.Snapshot, error)
}

type IdeaGenerator interface {
	Generate(ctx context.Context, brief generator.Brief) (*generator.Result, error)
}

type HistoryRecorder interface {
	AddHistory(ctx context.Context, accountID string, brief generator.Brief, ideas []generator.Idea, fallback bool) (*ideas.HistoryEntry, error)
}

type Deps struct {
	Quota     QuotaGate
	Generator IdeaGenerator
	History   HistoryRecorder

	// per-account request rate limit, nil disables it
	RateLimit gin.HandlerFunc
}

const generateTimeout = 60 * time.Second
