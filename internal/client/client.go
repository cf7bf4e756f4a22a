// Package client provides an HTTP client for the homebid REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/evcraddock/homebid/internal/access"
	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/bid"
	"github.com/evcraddock/homebid/internal/contract"
	"github.com/evcraddock/homebid/internal/property"
)

// Client is an HTTP client for the homebid API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. An empty token sends anonymous requests.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// LoginResponse is the response from POST /api/auth/login.
type LoginResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// created is the body of a 201 response.
type created struct {
	Message    string `json:"message"`
	UserID     string `json:"user_id"`
	PropertyID string `json:"property_id"`
	BidID      string `json:"bid_id"`
	ContractID string `json:"contract_id"`
}

// Health checks that the server is up.
func (c *Client) Health() error {
	return c.get("/health", nil)
}

// Register creates an account and returns its id.
func (c *Client) Register(username, email, password string) (string, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var resp created
	if err := c.send("POST", "/api/auth/register", body, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.send("POST", "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the server. Tokens stay valid until they expire.
func (c *Client) Logout() error {
	return c.send("POST", "/api/auth/logout", nil, nil)
}

// Me returns the identity behind the client's token.
func (c *Client) Me() (*access.Caller, error) {
	var caller access.Caller
	if err := c.get("/api/auth/me", &caller); err != nil {
		return nil, err
	}
	return &caller, nil
}

// ListOptions controls filtering for ListProperties. Empty fields match everything.
type ListOptions struct {
	Owner  string
	City   string
	State  string
	Type   string
	Status string
}

// ListProperties returns properties, optionally filtered.
func (c *Client) ListProperties(opts ListOptions) ([]*property.Property, error) {
	params := url.Values{}
	for k, v := range map[string]string{
		"owner":  opts.Owner,
		"city":   opts.City,
		"state":  opts.State,
		"type":   opts.Type,
		"status": opts.Status,
	} {
		if v != "" {
			params.Set(k, v)
		}
	}

	path := "/api/properties"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var props []*property.Property
	if err := c.get(path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty returns a property.
func (c *Client) GetProperty(id string) (*property.Property, error) {
	var p property.Property
	if err := c.get("/api/properties/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty lists a property and returns its id.
func (c *Client) CreateProperty(in property.Input) (string, error) {
	var resp created
	if err := c.send("POST", "/api/properties", in, &resp); err != nil {
		return "", err
	}
	return resp.PropertyID, nil
}

// UpdateProperty changes the fields set in in.
func (c *Client) UpdateProperty(id string, in property.Input) error {
	return c.send("PUT", "/api/properties/"+url.PathEscape(id), in, nil)
}

// DeleteProperty removes a property.
func (c *Client) DeleteProperty(id string) error {
	return c.send("DELETE", "/api/properties/"+url.PathEscape(id), nil, nil)
}

// PlaceBid places a bid and returns its id.
func (c *Client) PlaceBid(in bid.Input) (string, error) {
	var resp created
	if err := c.send("POST", "/api/bids", in, &resp); err != nil {
		return "", err
	}
	return resp.BidID, nil
}

// ListPropertyBids returns the bids on a property.
func (c *Client) ListPropertyBids(propertyID string) ([]*bid.Bid, error) {
	var bids []*bid.Bid
	if err := c.get("/api/bids/property/"+url.PathEscape(propertyID), &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListMyBids returns the caller's bids.
func (c *Client) ListMyBids() ([]*bid.Bid, error) {
	var bids []*bid.Bid
	if err := c.get("/api/bids/user", &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// SetBidStatus changes a bid's status.
func (c *Client) SetBidStatus(id, status string) error {
	return c.send("PUT", "/api/bids/"+url.PathEscape(id)+"/status", map[string]string{"status": status}, nil)
}

// CreateContract records a contract and returns its id.
func (c *Client) CreateContract(in contract.Input) (string, error) {
	var resp created
	if err := c.send("POST", "/api/contracts", in, &resp); err != nil {
		return "", err
	}
	return resp.ContractID, nil
}

// ListMyContracts returns the contracts where the caller is owner or agent.
func (c *Client) ListMyContracts() ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	if err := c.get("/api/contracts/user", &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// SetContractStatus changes a contract's status.
func (c *Client) SetContractStatus(id, status string) error {
	return c.send("PUT", "/api/contracts/"+url.PathEscape(id)+"/status", map[string]string{"status": status}, nil)
}

// AdminUsers returns every user.
func (c *Client) AdminUsers() ([]*auth.User, error) {
	var users []*auth.User
	if err := c.get("/api/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminDeleteUser removes a user.
func (c *Client) AdminDeleteUser(id string) error {
	return c.send("DELETE", "/api/admin/users/"+url.PathEscape(id), nil, nil)
}

// AdminBids returns every bid.
func (c *Client) AdminBids() ([]*bid.Bid, error) {
	var bids []*bid.Bid
	if err := c.get("/api/admin/bids", &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// AdminContracts returns every contract.
func (c *Client) AdminContracts() ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	if err := c.get("/api/admin/contracts", &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	return c.send("GET", path, nil, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = fmt.Sprintf("server error: %s", http.StatusText(resp.StatusCode))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
