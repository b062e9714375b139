package golfdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client представляет обёртку над Live Golf Data API (через RapidAPI).
// Клиент описывает только форму данных; лимиты и расписание опросов
// остаются на вызывающей стороне.
type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetSchedule возвращает расписание тура за год.
func (c *Client) GetSchedule(ctx context.Context, year int) (*Schedule, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))

	var schedule Schedule
	if err := c.get(ctx, "/schedule", params, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetTournament возвращает сведения о турнире вместе с полем игроков.
func (c *Client) GetTournament(ctx context.Context, tournID string, year int) (*Tournament, error) {
	params := url.Values{}
	params.Set("tournId", tournID)
	params.Set("year", strconv.Itoa(year))

	var tournament Tournament
	if err := c.get(ctx, "/tournament", params, &tournament); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetLeaderboard возвращает лидерборд турнира с результатами игроков.
func (c *Client) GetLeaderboard(ctx context.Context, orgID int, tournID string, year int) (*Leaderboard, error) {
	params := url.Values{}
	params.Set("orgId", strconv.Itoa(orgID))
	params.Set("tournId", tournID)
	params.Set("year", strconv.Itoa(year))

	var leaderboard Leaderboard
	if err := c.get(ctx, "/leaderboard", params, &leaderboard); err != nil {
		return nil, err
	}
	return &leaderboard, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("golfdata: failed to create request for %s: %w", path, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("golfdata: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("golfdata: %s returned unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("golfdata: failed to decode %s response: %w", path, err)
	}
	return nil
}
