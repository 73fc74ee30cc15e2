package main

import (
	"net/http"
	"os"
	"time"

	"podstats-discord-bot/internal/health"
)

func main() {
	addr := os.Getenv("PODSTATS_HEALTH_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + health.Path)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		os.Exit(1)
	}
	os.Exit(0)
}
