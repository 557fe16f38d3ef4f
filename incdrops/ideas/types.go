package ideas

import (
	"errors"
	"time"

	"codeberg.org/incdrops/server/internal/generator"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newest entries kept per account
const HistoryCap = 50

var (
	ErrNotFound      = errors.New("saved idea not found")
	ErrUnknownFormat = errors.New("unknown export format")
)

// handles generation history and saved idea database operations
type Repository struct {
	db         *pgxpool.Pool
	historyCap int
}

// one successful generation
type HistoryEntry struct {
	ID        string           `json:"id"`
	AccountID string           `json:"-"`
	Brief     generator.Brief  `json:"form"`
	Ideas     []generator.Idea `json:"ideas"`
	Fallback  bool             `json:"fallback"`
	CreatedAt time.Time        `json:"created_at"`
}

type Stats struct {
	TotalGenerated int    `json:"totalGenerated"`
	TopPlatform    string `json:"topPlatform"`
	MostUsedType   string `json:"mostUsedType"`
	TotalSessions  int    `json:"totalSessions"`
}

type Format string

const (
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)
