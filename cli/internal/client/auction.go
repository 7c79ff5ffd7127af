package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gavelworks/gavel-stack/common/events"
)

// AuctionClient talks to the auction service's REST API.
type AuctionClient struct {
	baseURL string
	client  *http.Client
}

func NewAuctionClient(baseURL string) *AuctionClient {
	return &AuctionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateAuctionRequest mirrors the service's POST body.
type CreateAuctionRequest struct {
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	Mileage      int       `json:"mileage"`
	ReservePrice int       `json:"reserve_price"`
	AuctionEnd   time.Time `json:"auction_end"`
}

// UpdateAuctionRequest mirrors the service's PUT body; nil fields are left
// unchanged.
type UpdateAuctionRequest struct {
	Make    *string `json:"make,omitempty"`
	Model   *string `json:"model,omitempty"`
	Year    *int    `json:"year,omitempty"`
	Color   *string `json:"color,omitempty"`
	Mileage *int    `json:"mileage,omitempty"`
}

func (c *AuctionClient) doRequest(method, path, token string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.client.Do(req)
}

func decodeError(resp *http.Response, op string) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%s: %s", op, errResp.Error)
	}
	return fmt.Errorf("%s: %s", op, resp.Status)
}

func (c *AuctionClient) List() ([]*events.AuctionSnapshot, error) {
	resp, err := c.doRequest(http.MethodGet, "/auctions", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "failed to list auctions")
	}

	var snaps []*events.AuctionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (c *AuctionClient) Get(id string) (*events.AuctionSnapshot, error) {
	resp, err := c.doRequest(http.MethodGet, "/auctions/"+id, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "failed to get auction")
	}

	var snap events.AuctionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *AuctionClient) Create(token string, req *CreateAuctionRequest) (*events.AuctionSnapshot, error) {
	resp, err := c.doRequest(http.MethodPost, "/auctions", token, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp, "failed to create auction")
	}

	var snap events.AuctionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *AuctionClient) Update(token, id string, req *UpdateAuctionRequest) (*events.AuctionSnapshot, error) {
	resp, err := c.doRequest(http.MethodPut, "/auctions/"+id, token, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "failed to update auction")
	}

	var snap events.AuctionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *AuctionClient) Delete(token, id string) error {
	resp, err := c.doRequest(http.MethodDelete, "/auctions/"+id, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, "failed to delete auction")
	}
	return nil
}
