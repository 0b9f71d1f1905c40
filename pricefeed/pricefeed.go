// Package pricefeed keeps a cache of USD coin prices fed from public
// exchange APIs.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flavioheleno/fbpanel/config"
)

// Default API endpoints.
const (
	CoinGeckoURL = "https://api.coingecko.com/api/v3/simple/price"
	BinanceURL   = "https://api.binance.com/api/v3/ticker/price"
)

// Provider returns the last known USD price of a coin.
type Provider interface {
	Get(priceID string) (float64, bool)
}

// Cache is a Provider safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

var _ Provider = (*Cache)(nil)

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{prices: make(map[string]float64)}
}

// Get implements Provider.
func (c *Cache) Get(priceID string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[priceID]
	return p, ok
}

// Set stores a price.
func (c *Cache) Set(priceID string, price float64) {
	c.mu.Lock()
	c.prices[priceID] = price
	c.mu.Unlock()
}

// Poller periodically refreshes a Cache.
//
// Every coin is first looked up on CoinGecko in a single request; coins
// missing from the answer are fetched from Binance when they carry a Binance
// symbol.
//
// The poller reads Coins from its own goroutine; use NewPoller when the
// caller keeps modifying its coin list.
type Poller struct {
	Cache    *Cache
	Coins    []config.Coin
	Interval time.Duration // Default 60s
	Client   *http.Client  // Default has an 8s timeout
	Logger   *slog.Logger  // Optional

	// Endpoints, overridable for tests
	CoinGeckoURL string
	BinanceURL   string
}

// NewPoller returns a Poller filling cache with the prices of a private copy
// of coins.
func NewPoller(cache *Cache, coins []config.Coin) *Poller {
	return &Poller{Cache: cache, Coins: slices.Clone(coins)}
}

func (p *Poller) defaults() {
	if p.Interval <= 0 {
		p.Interval = 60 * time.Second
	}
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 8 * time.Second}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.CoinGeckoURL == "" {
		p.CoinGeckoURL = CoinGeckoURL
	}
	if p.BinanceURL == "" {
		p.BinanceURL = BinanceURL
	}
}

// Run polls immediately and then once per Interval until ctx is done.
// Failed polls are logged and retried at the next period.
func (p *Poller) Run(ctx context.Context) error {
	p.defaults()
	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		p.Poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Poll performs one refresh of all coins.
func (p *Poller) Poll(ctx context.Context) {
	p.defaults()
	if len(p.Coins) == 0 {
		return
	}

	prices, err := p.fetchCoinGecko(ctx)
	if err != nil {
		p.Logger.Error("price request failed", "source", "coingecko", "err", err)
		prices = nil
	}

	for _, coin := range p.Coins {
		if ctx.Err() != nil {
			return
		}
		id := coin.PriceID()
		if price, ok := prices[id]; ok {
			p.Cache.Set(id, price)
			p.Logger.Debug("price updated", "symbol", coin.Symbol, "price", price)
			continue
		}
		if coin.BinanceSymbol == "" {
			p.Logger.Warn("coin not found in any API", "symbol", coin.Symbol, "id", id)
			continue
		}
		price, err := p.fetchBinance(ctx, coin.BinanceSymbol)
		if err != nil {
			p.Logger.Warn("price request failed", "source", "binance", "symbol", coin.Symbol, "err", err)
			continue
		}
		p.Cache.Set(id, price)
		p.Logger.Debug("price updated", "symbol", coin.Symbol, "price", price, "source", "binance")
	}
}

func (p *Poller) fetchCoinGecko(ctx context.Context) (map[string]float64, error) {
	ids := make([]string, 0, len(p.Coins))
	for _, c := range p.Coins {
		ids = append(ids, c.PriceID())
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	var body map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := p.getJSON(ctx, p.CoinGeckoURL+"?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(body))
	for id, v := range body {
		if v.USD != nil {
			prices[id] = *v.USD
		}
	}
	return prices, nil
}

func (p *Poller) fetchBinance(ctx context.Context, symbol string) (float64, error) {
	var body struct {
		Price string `json:"price"`
	}
	if err := p.getJSON(ctx, p.BinanceURL+"?symbol="+url.QueryEscape(symbol), &body); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(body.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: binance %s: %w", symbol, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("pricefeed: binance %s: no price", symbol)
	}
	return price, nil
}

func (p *Poller) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("pricefeed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("pricefeed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pricefeed: %s: %s", req.URL.Host, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("pricefeed: decode %s: %w", req.URL.Host, err)
	}
	return nil
}
