package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chatmultimodel/backend/internal/logger"
	"github.com/chatmultimodel/backend/internal/settings"
)

// FallbackModels is substituted whenever the inference host's catalog cannot
// be retrieved.
var FallbackModels = []string{settings.DefaultModel}

// Fetcher queries the inference host's discovery endpoint for available
// models. It never caches; callers that want caching layer it themselves.
type Fetcher struct {
	client *http.Client
	log    *logger.Logger
}

func NewFetcher(log *logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		log:    log.With("component", "catalog"),
	}
}

type tagsResp struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Fetch returns the ordered model names advertised by the host at baseURL.
// Any failure past the configured timeout bound resolves to the static
// fallback list; an unreachable host is a recovered condition, never an
// error, so session start is stalled by at most the timeout.
func (f *Fetcher) Fetch(ctx context.Context, baseURL string, timeout time.Duration) []string {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names, err := f.fetch(ctx, baseURL)
	if err != nil {
		f.log.Warn("model catalog unavailable, using fallback", "base_url", baseURL, "err", err)
		return append([]string(nil), FallbackModels...)
	}
	return names
}

func (f *Fetcher) fetch(ctx context.Context, baseURL string) ([]string, error) {
	url := fmt.Sprintf("%s/api/tags", strings.TrimSuffix(baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: status %d", resp.StatusCode)
	}

	var decoded tagsResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if len(decoded.Models) == 0 {
		return nil, fmt.Errorf("catalog: empty model list")
	}

	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("catalog: entry missing name")
		}
		names = append(names, m.Name)
	}
	return names, nil
}
