package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"leadpilot.com/lead-qualifier/internal/config"
)

// WorkflowClient invokes the hosted multi-agent scoring workflow with a
// single authenticated kickoff call. The workflow runs its three stages
// remotely and responds with the final stage's output as JSON.
type WorkflowClient struct {
	endpoint     string
	apiKey       string
	serperAPIKey string
	agentsConfig string
	tasksConfig  string
	httpClient   *http.Client
}

func NewWorkflowClient(cfg *config.Config) *WorkflowClient {
	return &WorkflowClient{
		endpoint:     cfg.ScoringAPIURL,
		apiKey:       cfg.ScoringAPIKey,
		serperAPIKey: cfg.SerperAPIKey,
		agentsConfig: cfg.ScoringAgentsConfig,
		tasksConfig:  cfg.ScoringTasksConfig,
		httpClient:   &http.Client{Timeout: cfg.CallTimeout},
	}
}

func (c *WorkflowClient) Run(ctx context.Context, inputs map[string]any) (any, error) {
	body, err := json.Marshal(map[string]any{
		"inputs":        inputs,
		"agents_config": c.agentsConfig,
		"tasks_config":  c.tasksConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow inputs: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.serperAPIKey != "" {
		req.Header.Set("X-Serper-Api-Key", c.serperAPIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimedOut, err)
		}
		return nil, fmt.Errorf("workflow request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("workflow returned status %d: %s", resp.StatusCode, data)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("workflow returned a non-JSON body: %w", err)
	}
	return out, nil
}
