package main

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/internal/quota"
	"codeberg.org/incdrops/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	apiURL := os.Getenv("INCDROPS_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	token := os.Getenv("INCDROPS_TOKEN")
	if token == "" {
		fmt.Println("INCDROPS_TOKEN is required, sign in on the website and copy your API token")
		os.Exit(1)
	}

	accountID, err := tui.AccountIDFromToken(token)
	if err != nil {
		fmt.Printf("invalid INCDROPS_TOKEN: %v\n", err)
		os.Exit(1)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("error locating home directory: %v\n", err)
		os.Exit(1)
	}

	dataDir := filepath.Join(home, ".incdrops")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fmt.Printf("error creating %s: %v\n", dataDir, err)
		os.Exit(1)
	}

	// the terminal belongs to the UI, logs go to a file
	logFile, err := os.OpenFile(filepath.Join(dataDir, "tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err == nil {
		logger.SetOutput(logFile)
		defer logFile.Close() //nolint:errcheck
	}

	cache, err := quota.OpenBoltCache(filepath.Join(dataDir, "cache.db"))
	if err != nil {
		fmt.Printf("error opening usage cache: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close() //nolint:errcheck

	api := tui.NewAPIClient(apiURL, token)
	push := tui.NewWSClient(apiURL, token)
	defer push.Close()

	app := tui.NewApp(apiURL, api, tui.NewUsageShadow(api, cache, accountID), push)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running incdrops: %v\n", err)
		os.Exit(1)
	}
}
