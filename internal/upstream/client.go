// Package upstream talks to the Contember content API. It issues the one
// GraphQL query the service needs and turns the raw payload into a
// models.Snapshot, deriving per-offer fields once per fetch.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	_ "embed"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/david/offers-bff/internal/models"
)

//go:embed query.graphql
var contentQuery string

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error is returned for any failure to obtain a usable snapshot from the
// content API: transport errors, non-2xx statuses, undecodable payloads and
// GraphQL-level errors.
type Error struct {
	StatusCode int // zero when no HTTP response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream fetch failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream fetch failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Client struct {
	url    string
	token  string
	client *http.Client
	log    *zap.Logger
}

func NewClient(url, token string, timeout time.Duration, log *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log,
	}
}

// rawOffer matches the upstream offer shape. Assignees are fetched but only
// consumed during derivation; the derived models.Offer does not carry them.
type rawOffer struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Type      models.TypeRef `json:"type"`
	Assignees []struct {
		ID string `json:"id"`
	} `json:"assignees"`
	Parameters []models.Parameter `json:"parameters"`
}

type contentPayload struct {
	Data struct {
		OfferTypes []models.OfferType `json:"offerTypes"`
		Languages  []models.Language  `json:"languages"`
		Districts  []models.District  `json:"districts"`
		Offers     []rawOffer         `json:"offers"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchSnapshot performs one authenticated content query and returns the full
// derived snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	body, err := json.Marshal(map[string]string{"query": contentQuery})
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("encoding query: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var payload contentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding payload: %w", err)}
	}
	if len(payload.Errors) > 0 {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("graphql error: %s", payload.Errors[0].Message)}
	}

	snapshot := deriveSnapshot(payload)
	c.log.Debug("content query succeeded",
		zap.Int("offer_types", len(snapshot.OfferTypes)),
		zap.Int("districts", len(snapshot.Districts)),
		zap.Int("offers", len(snapshot.Offers)))
	return snapshot, nil
}

// deriveSnapshot projects raw offers into their served shape. An offer may be
// reacted to iff its type does not require volunteer verification; offers
// referencing an unknown type keep AllowReaction false.
func deriveSnapshot(payload contentPayload) *models.Snapshot {
	needsVerification := make(map[string]bool, len(payload.Data.OfferTypes))
	for _, offerType := range payload.Data.OfferTypes {
		needsVerification[offerType.ID] = offerType.NeedsVerification
	}

	offers := make([]models.Offer, 0, len(payload.Data.Offers))
	for _, raw := range payload.Data.Offers {
		allowReaction := false
		if needs, ok := needsVerification[raw.Type.ID]; ok {
			allowReaction = !needs
		}
		offers = append(offers, models.Offer{
			ID:            raw.ID,
			Code:          raw.Code,
			AllowReaction: allowReaction,
			Type:          raw.Type,
			Parameters:    raw.Parameters,
		})
	}

	return &models.Snapshot{
		OfferTypes: payload.Data.OfferTypes,
		Districts:  payload.Data.Districts,
		Languages:  payload.Data.Languages,
		Offers:     offers,
	}
}
