// Package entropy provides run seeds via random.org, falling back to
// crypto/rand when the API is unavailable. The simulation itself is
// deterministic from whatever seed is drawn.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client fetches true random values from random.org.
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Seed returns a random int64 run seed. Uses random.org when the client
// is configured, crypto/rand otherwise or on any API failure.
func (c *Client) Seed() int64 {
	if c == nil || c.apiKey == "" {
		return cryptoSeed()
	}

	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": c.apiKey,
			"n":      1,
			"min":    0,
			"max":    1000000000,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return cryptoSeed()
	}

	resp, err := c.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return cryptoSeed()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return cryptoSeed()
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return cryptoSeed()
	}
	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return cryptoSeed()
	}
	if len(result.Result.Random.Data) == 0 {
		return cryptoSeed()
	}

	return result.Result.Random.Data[0]
}

// cryptoSeed generates a non-negative int64 seed from crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; a fixed seed still yields a valid run.
		return 1
	}
	n := binary.LittleEndian.Uint64(buf[:]) >> 1
	return int64(n)
}
