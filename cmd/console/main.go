package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/storyloom/storyloom/pkg/session"
)

type ConsoleConfig struct {
	APIBaseURL string
	UserID     string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		UserID:     os.Getenv("USER_ID"),
		Timeout:    120 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Story seed (a sentence or two to build your world from):\n> ")
	seed, _ := reader.ReadString('\n')
	seed = strings.TrimSpace(seed)
	if seed == "" {
		fmt.Fprintf(os.Stderr, "A story seed is required\n")
		os.Exit(1)
	}

	fmt.Printf("Genre (%s): ", strings.Join(session.GenreNames(), ", "))
	genre, _ := reader.ReadString('\n')
	genre = strings.TrimSpace(genre)
	if genre == "" {
		genre = "adventure"
	}

	fmt.Print("Player name (blank for default): ")
	playerName, _ := reader.ReadString('\n')
	playerName = strings.TrimSpace(playerName)

	fmt.Println("\nSpinning up your world...")
	story, err := createStory(client, cfg, seed, genre, playerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create story: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, story),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
