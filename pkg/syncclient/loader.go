package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Loader fetches the authoritative full product list over HTTP.
type Loader struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

type listEnvelope struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Product `json:"data"`
}

// ListAll performs GET /api/inventory and returns the decoded list.
func (l *Loader) ListAll(ctx context.Context) ([]Product, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	url := strings.TrimRight(l.BaseURL, "/") + "/api/inventory"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("syncclient: list returned %s", resp.Status)
	}

	var env listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("syncclient: decode list: %w", err)
	}
	return env.Data, nil
}
