package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

// ratesResponse represents the exchange-rate API response
type ratesResponse struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Rates              map[string]float64 `json:"rates"`
}

// RatesClient polls an exchange-rate API and hands finished RateTable
// snapshots to the engine side. The conversion core never fetches rates
// itself; this client is the external collaborator that feeds it.
type RatesClient struct {
	onUpdate     func(*domain.RateTable)
	base         domain.Code
	ttl          time.Duration
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewRatesClient creates a rates poller from configuration
func NewRatesClient(cfg *Config, onUpdate func(*domain.RateTable)) *RatesClient {
	return &RatesClient{
		onUpdate:     onUpdate,
		base:         cfg.Store.BaseCurrency,
		ttl:          cfg.TTL(),
		pollInterval: cfg.PollInterval(),
		apiURL:       cfg.Rates.URL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start fetches once immediately, then begins polling
func (c *RatesClient) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	if err := c.fetchTable(ctx); err != nil {
		slog.Warn("Initial rate table fetch failed", slog.Any("error", err))
		// Continue anyway - will retry on next tick
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Rate polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Rate polling stopped")
				return
			case <-ticker.C:
				if err := c.fetchTable(ctx); err != nil {
					slog.Warn("Rate table fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// fetchTable fetches the current rates with retry and exponential backoff
func (c *RatesClient) fetchTable(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doFetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("Rate fetch attempt failed", slog.Int("attempt", i+1), slog.Any("error", err))
	}
	return lastErr
}

func (c *RatesClient) doFetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	table, err := c.parseTable(body)
	if err != nil {
		return err
	}

	slog.Info("Rate table updated",
		slog.String("base", string(table.Base)),
		slog.Int("currencies", len(table.Rates)),
	)
	if c.onUpdate != nil {
		c.onUpdate(table)
	}
	return nil
}

// parseTable validates the API payload and builds an immutable snapshot.
// The provider must quote rates against the store's base currency; a
// mismatched base would silently scale every price on the page.
func (c *RatesClient) parseTable(body []byte) (*domain.RateTable, error) {
	var data ratesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	if data.Result != "" && data.Result != "success" {
		return nil, fmt.Errorf("rates API returned result %q", data.Result)
	}
	if data.BaseCode != "" && domain.Code(data.BaseCode) != c.base {
		return nil, fmt.Errorf("rates quoted against %s, store base is %s", data.BaseCode, c.base)
	}
	if len(data.Rates) == 0 {
		return nil, fmt.Errorf("empty rate table in response")
	}

	rates := make(map[domain.Code]decimal.Decimal, len(data.Rates))
	for code, rate := range data.Rates {
		rates[domain.Code(code)] = decimal.NewFromFloat(rate)
	}

	// freshness is counted from our fetch, not the provider's publish
	// time: a daily-published table is still valid for one TTL window
	return domain.NewRateTable(c.base, rates, time.Now(), c.ttl), nil
}

// Stop stops the polling
func (c *RatesClient) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
	}
}
