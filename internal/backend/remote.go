package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/logging"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

var _ importers.Backend = (*Remote)(nil)

// Remote calls the backend API of another instance.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *zap.Logger
}

type RemoteOption func(*Remote)

// WithHTTPClient replaces the authenticated client, for example in tests.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) { r.httpClient = client }
}

func WithRetryDelay(delay time.Duration) RemoteOption {
	return func(r *Remote) { r.retryDelay = delay }
}

func WithLogger(logger *zap.Logger) RemoteOption {
	return func(r *Remote) { r.logger = logging.OrNop(logger).Named("backend") }
}

// NewRemote creates a client for the API at baseURL, e.g.
// "https://members.example.org/api". Requests carry token as a bearer token.
func NewRemote(baseURL, token string, timeout time.Duration, opts ...RemoteOption) *Remote {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout

	r := &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		retryDelay: initialRetryDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Members(ctx context.Context, organizationID string) ([]entities.Member, error) {
	var list []entities.Member
	path := "/members?" + url.Values{"organization_id": {organizationID}}.Encode()
	if err := r.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Remote) Period(ctx context.Context, periodID string) (*entities.RegistrationPeriod, error) {
	var period entities.RegistrationPeriod
	if err := r.do(ctx, http.MethodGet, "/periods/"+url.PathEscape(periodID), nil, &period); err != nil {
		return nil, err
	}
	return &period, nil
}

// SaveMember creates or replaces the member. A member with an id is PUT,
// which creates it when the API does not know the id yet. Members without
// an id are POSTed and get one from the API.
func (r *Remote) SaveMember(ctx context.Context, member *entities.Member) (*entities.Member, error) {
	path := "/members"
	method := http.MethodPost
	if member.ID != "" {
		path += "/" + url.PathEscape(member.ID)
		method = http.MethodPut
	}

	var saved entities.Member
	if err := r.do(ctx, method, path, member, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *Remote) Register(ctx context.Context, checkout importers.Checkout) ([]entities.Registration, error) {
	var list []entities.Registration
	if err := r.do(ctx, http.MethodPost, "/members/register", checkout, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Remote) BalanceItems(ctx context.Context, registrationID string) ([]entities.BalanceItem, error) {
	var items []entities.BalanceItem
	path := "/receivable-balances/registration/" + url.PathEscape(registrationID)
	if err := r.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Remote) CreatePayments(ctx context.Context, payments []importers.PaymentRequest) error {
	return r.do(ctx, http.MethodPatch, "/organization/payments", payments, nil)
}

// do sends one request, retrying on rate limits and, for idempotent
// methods, on server errors.
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	idempotent := method == http.MethodGet || method == http.MethodPut
	var lastErr error

	for attempt := range maxRetries {
		if attempt > 0 {
			delay := r.calculateRetryDelay(attempt)
			r.logger.Debug("retrying backend request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = r.doRequest(ctx, method, path, payload, out)
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr, idempotent) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (r *Remote) doRequest(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidToken
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		var errResp ErrorResponse
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return &RequestError{StatusCode: resp.StatusCode, Err: errResp.toError()}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (r *Remote) calculateRetryDelay(attempt int) time.Duration {
	delay := r.retryDelay
	for range attempt - 1 {
		delay *= time.Duration(retryBackoffFactor)
	}
	return min(delay, maxRetryDelay)
}
