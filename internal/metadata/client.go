package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sonna/artists-backend/pkg/config"
)

// Recording is one candidate match from the external metadata search.
type Recording struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"` // 0-100 relevance from the search engine
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
}

type searchResponse struct {
	Count      int         `json:"count"`
	Recordings []Recording `json:"recordings"`
}

// Client queries the MusicBrainz recording-search endpoint. Calls are
// bounded by the configured timeout; failures are reported to the caller,
// which applies the fail-open policy.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg *config.MusicBrainzConfig) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchRecordings runs one free-text title+artist query and returns the
// candidate matches.
func (c *Client) SearchRecordings(ctx context.Context, title, artist string) ([]Recording, error) {
	query := fmt.Sprintf(`title:%q AND artist:%q`, title, artist)

	endpoint := fmt.Sprintf("%s/recording?query=%s&fmt=json", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building metadata request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying metadata api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("metadata api returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding metadata response: %w", err)
	}
	return parsed.Recordings, nil
}
