package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Tree is the unpriced city/day/activity layout produced by the draft
// generator. City order may be optimized by the generator; day buckets
// carry catalog activity ids only.
type Tree struct {
	Legs []Leg `json:"legs"`
}

type Leg struct {
	City string `json:"city"`
	Days []Day  `json:"days"`
}

type Day struct {
	Activities []string `json:"activities"`
}

// Generator is the draft-itinerary service boundary. The engine treats
// its output as an opaque starting tree.
type Generator interface {
	Generate(ctx context.Context, cities []string, activities map[string][]string) (*Tree, error)
}

type HTTPGenerator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGenerator(baseURL string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, cities []string, activities map[string][]string) (*Tree, error) {
	body, err := json.Marshal(map[string]interface{}{
		"cities":     cities,
		"activities": activities,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/draft", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build draft request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("draft generator returned status %d", resp.StatusCode)
	}

	var tree Tree
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to decode draft tree: %w", err)
	}

	if len(tree.Legs) == 0 {
		return nil, fmt.Errorf("draft generator returned an empty tree")
	}

	return &tree, nil
}
