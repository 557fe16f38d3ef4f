package tui

import (
	"net/http"
	"sync"
	"time"

	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/gorilla/websocket"
)

const (
	generateTimeout = 90 * time.Second
	requestTimeout  = 15 * time.Second
	reconnectDelay  = 5 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	writeWait       = 10 * time.Second
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateForm
	StateResults
)

// main TUI application model
type Model struct {
	state   AppState
	width   int
	height  int
	err     error
	usage   UsageView
	welcome *Welcome
	form    *FormModel
	results *ResultsModel
	api     *APIClient
	shadow  *UsageShadow
	ws      *WSClient
}

// what the status line shows about the account's monthly usage
type UsageView struct {
	Loaded   bool
	Tier     string
	Period   string
	Count    int64
	Limit    int64 // -1 when unbounded
	ResetAt  time.Time
	Degraded bool // served from the local shadow, the server was unreachable
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the generator form
type EnterFormMsg struct{}

// sent when the usage shadow was reconciled with the server
type UsageLoadedMsg struct {
	usage UsageView
}

// sent when a generation request completes
type GenerateResultMsg struct {
	brief generator.Brief
	resp  *GenerateResponse
}

// sent when a generation request fails
type GenerateErrorMsg struct {
	err error
}

// sent when the server pushes a usage or tier change for this account
type UsagePushMsg struct {
	kind string
}

// sent when the push channel dropped and will be retried
type PushDisconnectedMsg struct {
	err error
}

// welcome screen model
type Welcome struct {
	apiURL   string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
}

// the generator form: three free text fields and a content type picker
type FormModel struct {
	inputs      []textinput.Model
	focus       int
	contentType int
	width       int
	isFetching  bool
	atLimit     bool
	err         error
	spinner     spinner.Model
}

// renders the ideas of the last generation
type ResultsModel struct {
	viewport        viewport.Model
	glamourRenderer *glamour.TermRenderer
	ideas           []generator.Idea
	brief           generator.Brief
	fallback        bool
	model           string
	width           int
	height          int
	ready           bool
}

// talks to the REST API with the account's token
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// the generate endpoint's response body
type GenerateResponse struct {
	Ideas    []generator.Idea `json:"ideas"`
	Usage    usage.Snapshot   `json:"usage"`
	Fallback bool             `json:"fallback"`
	Model    string           `json:"model"`
}

// a non-2xx API response
type APIError struct {
	Status  int
	Code    string
	Message string

	// set for quota_exceeded
	Tier      string
	Count     int64
	Limit     int64
	ResetAt   string
	UpgradeTo string
}

// the optimistic-UI shadow of the account's usage: a tracker over the remote
// API with a local cache, so the count survives restarts and offline starts
type UsageShadow struct {
	accountID string
	tracker   *quota.Tracker
	remote    *remoteStore
}

// reads usage records from the API, the server owns every write
type remoteStore struct {
	api *APIClient

	mu   sync.Mutex
	last *usage.Snapshot
}

// receives usage pushes for the account
type WSClient struct {
	endpoint string
	token    string
	events   chan UsagePushMsg

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
}
