// Package kinetics is the HTTP client for the external computation service.
// The service owns mechanism parsing, rate-law evaluation and plot rendering;
// this side only transports documents up and decodes numbers and images back.
package kinetics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kinlab-backend/internal/config"
	"kinlab-backend/internal/model"
	"kinlab-backend/internal/utils"
	"kinlab-backend/pkg/logger"

	"github.com/google/uuid"
)

// Service is what the mechanism service depends on; the fake in the service
// tests implements it too.
type Service interface {
	CreateSession(ctx context.Context, rawDocument string) (*model.Session, error)
	GetRates(ctx context.Context, sessionID string, body map[string]float64) (*RatesResult, error)
	GetPlot(ctx context.Context, sessionID string, tLow, tHigh float64, mode model.PlotMode, body map[string]float64) (string, error)
}

// RatesResult is one decoded snapshot. ProgressRates align with the session's
// equation list, ReactionRates with its species list. Ks is optional; older
// service builds do not send rate coefficients.
type RatesResult struct {
	ProgressRates []float64
	ReactionRates []float64
	Ks            []float64
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.KineticsConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: utils.NewHTTPClient(cfg.Timeout),
	}
}

// envelope is the superset of every response body the service sends. Status
// is "failed" with a reason on application-level rejection; any other status
// counts as success.
type envelope struct {
	Status        string          `json:"status"`
	Reason        string          `json:"reason"`
	ID            string          `json:"id"`
	Species       []string        `json:"species"`
	Equations     []string        `json:"equations"`
	ProgressRates json.RawMessage `json:"progress_rates"`
	ReactionRates json.RawMessage `json:"reaction_rates"`
	Ks            []float64       `json:"ks"`
}

func (c *Client) CreateSession(ctx context.Context, rawDocument string) (*model.Session, error) {
	env, err := c.post(ctx, "/session", map[string]string{"data": rawDocument})
	if err != nil {
		return nil, err
	}

	return &model.Session{
		ID:        env.ID,
		Species:   env.Species,
		Equations: env.Equations,
	}, nil
}

func (c *Client) GetRates(ctx context.Context, sessionID string, body map[string]float64) (*RatesResult, error) {
	env, err := c.post(ctx, fmt.Sprintf("/rates/%s", sessionID), body)
	if err != nil {
		return nil, err
	}

	result := &RatesResult{Ks: env.Ks}
	if err := json.Unmarshal(env.ProgressRates, &result.ProgressRates); err != nil {
		return nil, &model.ServerRejectedError{Reason: "malformed progress_rates in response"}
	}
	if err := json.Unmarshal(env.ReactionRates, &result.ReactionRates); err != nil {
		return nil, &model.ServerRejectedError{Reason: "malformed reaction_rates in response"}
	}
	return result, nil
}

// GetPlot returns the base64 image for the requested mode. The service may
// answer with both images; only the mode's key is read.
func (c *Client) GetPlot(ctx context.Context, sessionID string, tLow, tHigh float64, mode model.PlotMode, body map[string]float64) (string, error) {
	path := fmt.Sprintf("/plots/%s/%g/%g", sessionID, tLow, tHigh)
	env, err := c.post(ctx, path, body)
	if err != nil {
		return "", err
	}

	var raw json.RawMessage
	switch mode {
	case model.PlotModeReaction:
		raw = env.ReactionRates
	case model.PlotModeProgress:
		raw = env.ProgressRates
	default:
		return "", model.ErrInvalidMode
	}

	var image string
	if err := json.Unmarshal(raw, &image); err != nil || image == "" {
		return "", &model.ServerRejectedError{Reason: fmt.Sprintf("no %s plot in response", mode)}
	}
	return image, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*envelope, error) {
	reqID := uuid.New().String()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.WithFields(map[string]interface{}{
		"request_id": reqID,
		"path":       path,
	}).Debugf("kinetics request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &model.TransportError{StatusCode: resp.StatusCode}
	}

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, &model.ServerRejectedError{Reason: fmt.Sprintf("undecodable response (%v)", err)}
	}

	if env.Status == "failed" {
		return nil, &model.ServerRejectedError{Reason: env.Reason}
	}

	return env, nil
}
