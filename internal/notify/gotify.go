package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GotifyConfig mirrors the "logging.gotify" block of the config file.
type GotifyConfig struct {
	ServerURL string `json:"server_url"`
	AppToken  string `json:"app_token"`
	Priority  int    `json:"priority"`
	Title     string `json:"title"`
}

// Gotify pushes messages to a gotify server.
type Gotify struct {
	hc       *http.Client
	base     string
	token    string
	priority int
	title    string
}

func NewGotify(cfg GotifyConfig) *Gotify {
	title := cfg.Title
	if title == "" {
		title = "sgw-sniper"
	}
	return &Gotify{
		hc:       &http.Client{Timeout: 10 * time.Second},
		base:     strings.TrimRight(cfg.ServerURL, "/"),
		token:    cfg.AppToken,
		priority: cfg.Priority,
		title:    title,
	}
}

func (g *Gotify) Push(message string) error {
	b, err := json.Marshal(map[string]any{
		"title":    g.title,
		"message":  message,
		"priority": g.priority,
	})
	if err != nil {
		return err
	}

	res, err := g.hc.Post(g.base+"/message?token="+g.token, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("gotify: HTTP %d", res.StatusCode)
	}
	return nil
}
