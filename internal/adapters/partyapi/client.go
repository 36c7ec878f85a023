package partyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"partyplanner/internal/domain"
)

// TokenSource supplies a bearer token for each request.
type TokenSource interface {
	Token() (string, error)
}

// envelope is the {data: ...} wrapper every endpoint returns.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type partyAPIClient struct {
	apiURL string
	client *http.Client
	tokens TokenSource
}

// NewClient returns a gateway that reads the party dataset from apiURL
// (host + cohort path, without trailing slash). tokens may be nil.
func NewClient(apiURL string, client *http.Client, tokens TokenSource) domain.PartyGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &partyAPIClient{apiURL: apiURL, client: client, tokens: tokens}
}

func (c *partyAPIClient) ListParties(ctx context.Context) ([]domain.Party, error) {
	var out []domain.Party
	if err := c.getCollection(ctx, domain.ResourceParties, "/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *partyAPIClient) GetParty(ctx context.Context, id int64) (*domain.Party, error) {
	raw, err := c.get(ctx, domain.ResourceParty, "/events/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, domain.NewShapeError(domain.ResourceParty, nil)
	}
	var p domain.Party
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, domain.NewShapeError(domain.ResourceParty, err)
	}
	return &p, nil
}

func (c *partyAPIClient) ListRsvps(ctx context.Context) ([]domain.Rsvp, error) {
	var out []domain.Rsvp
	if err := c.getCollection(ctx, domain.ResourceRsvps, "/rsvps", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *partyAPIClient) ListGuests(ctx context.Context) ([]domain.Guest, error) {
	var out []domain.Guest
	if err := c.getCollection(ctx, domain.ResourceGuests, "/guests", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *partyAPIClient) getCollection(ctx context.Context, res domain.Resource, path string, dest any) error {
	raw, err := c.get(ctx, res, path)
	if err != nil {
		return err
	}
	if len(raw) == 0 || raw[0] != '[' {
		return domain.NewShapeError(res, fmt.Errorf("data is not an array"))
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return domain.NewShapeError(res, err)
	}
	return nil
}

// get issues one GET and returns the envelope's raw data, trimmed.
func (c *partyAPIClient) get(ctx context.Context, res domain.Resource, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return nil, domain.NewNetworkError(res, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, domain.NewNetworkError(res, fmt.Errorf("failed to issue token: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(res, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewStatusError(res, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, domain.NewShapeError(res, fmt.Errorf("failed to decode response: %w", err))
	}
	return bytes.TrimSpace(env.Data), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
