package generator

import (
	"context"
	"errors"
	"time"
)

const (
	ContentSocial      = "social"
	ContentBlog        = "blog"
	ContentAds         = "ads"
	ContentEmail       = "email"
	ContentVideo       = "video"
	ContentPodcast     = "podcast"
	ContentInfographic = "infographic"
	ContentWhitepaper  = "whitepaper"
)

var ContentTypes = []string{
	ContentSocial, ContentBlog, ContentAds, ContentEmail,
	ContentVideo, ContentPodcast, ContentInfographic, ContentWhitepaper,
}

var (
	ErrUpstream           = errors.New("generation provider failed")
	ErrInvalidContentType = errors.New("unknown content type")
)

// what the account asked ideas for
type Brief struct {
	Industry       string `json:"industry"`
	TargetAudience string `json:"targetAudience"`
	Services       string `json:"services"`
	ContentType    string `json:"contentType"`
}

type Idea struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Platforms   []string  `json:"platforms"`
	Hashtags    []string  `json:"hashtags"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ContentType string    `json:"contentType"`
}

type Result struct {
	Ideas    []Idea
	Fallback bool // the model output was unusable and placeholders were returned
	Provider string
	Model    string
	Duration time.Duration
}

// a text completion backend
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// receives one event per generation, implemented by the metrics package
type Observer interface {
	ObserveGeneration(provider, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(string, string, time.Duration) {}

// the compatibility envelope clients of the first API version parse
type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content CandidateContent `json:"content"`
}

type CandidateContent struct {
	Parts []CandidatePart `json:"parts"`
}

type CandidatePart struct {
	Text string `json:"text"`
}
