// Package api is the HTTP client for the opponent daemon's REST API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessmind/internal/client/display"
	"chessmind/internal/core"
)

// Envelope is the response wrapper every API endpoint uses.
type Envelope struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending"`
	Data    json.RawMessage     `json:"data"`
	Error   *core.ErrorResponse `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) (*Envelope, error) {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Verbose {
		fmt.Printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
		if bodyStr != "" {
			fmt.Printf("%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			var pretty interface{}
			if err := json.Unmarshal(respBody, &pretty); err == nil {
				prettyJSON, _ := json.MarshalIndent(pretty, "", "  ")
				fmt.Printf("%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(prettyJSON))
			}
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return &Envelope{Success: true}, nil
	}

	if resp.StatusCode >= 400 {
		// Error endpoints return the error object directly
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s (%s)", errResp.Error, errResp.Code)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		// Endpoints without the envelope (health) decode straight into result
		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return nil, fmt.Errorf("parse response: %w", err)
			}
			return &Envelope{Success: true}, nil
		}
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("parse response data: %w", err)
		}
	}
	return &env, nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	_, err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req *core.CreateGameRequest) (*core.GameResponse, bool, error) {
	var resp core.GameResponse
	env, err := c.doRequest("POST", "/api/v1/games", req, &resp)
	if err != nil {
		return nil, false, err
	}
	return &resp, env.Pending, nil
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, bool, error) {
	var resp core.GameResponse
	env, err := c.doRequest("GET", "/api/v1/games/"+gameID, nil, &resp)
	if err != nil {
		return nil, false, err
	}
	return &resp, env.Pending, nil
}

func (c *Client) DeleteGame(gameID string) error {
	_, err := c.doRequest("DELETE", "/api/v1/games/"+gameID, nil, nil)
	return err
}

func (c *Client) MakeMove(gameID string, move string) (*core.GameResponse, bool, error) {
	req := &core.MoveRequest{Move: move}
	var resp core.GameResponse
	env, err := c.doRequest("POST", "/api/v1/games/"+gameID+"/moves", req, &resp)
	if err != nil {
		return nil, false, err
	}
	return &resp, env.Pending, nil
}

func (c *Client) UndoMoves(gameID string, count int) (*core.GameResponse, error) {
	req := &core.UndoRequest{Count: count}
	var resp core.GameResponse
	_, err := c.doRequest("POST", "/api/v1/games/"+gameID+"/undo", req, &resp)
	return &resp, err
}

func (c *Client) Configure(gameID string, req *core.ConfigureRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	_, err := c.doRequest("PUT", "/api/v1/games/"+gameID+"/config", req, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	_, err := c.doRequest("GET", "/api/v1/games/"+gameID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) Chat(gameID, message string) (*core.ChatResponse, error) {
	req := &core.ChatRequest{Message: message}
	var resp core.ChatResponse
	_, err := c.doRequest("POST", "/api/v1/games/"+gameID+"/chat", req, &resp)
	return &resp, err
}

func (c *Client) Analyze(gameID string) (*core.AnalysisResponse, error) {
	var resp core.AnalysisResponse
	_, err := c.doRequest("GET", "/api/v1/games/"+gameID+"/analysis", nil, &resp)
	return &resp, err
}

// WaitForOpponent polls until the opponent decision lands or timeout expires.
func (c *Client) WaitForOpponent(gameID string, timeout time.Duration) (*core.GameResponse, error) {
	deadline := time.Now().Add(timeout)
	for {
		resp, pending, err := c.GetGame(gameID)
		if err != nil {
			return nil, err
		}
		if !pending {
			return resp, nil
		}
		if time.Now().After(deadline) {
			return resp, fmt.Errorf("opponent is still deciding after %s", timeout)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
