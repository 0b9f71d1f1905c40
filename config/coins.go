package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
)

// FallbackColor is used for coins whose colour cannot be parsed.
var FallbackColor = color.NRGBA{R: 247, G: 147, B: 26, A: 255}

// Coin is one entry of the coins file.
type Coin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	Show          *bool  `json:"show,omitempty"` // nil means shown
	CoinGeckoID   string `json:"coingecko_id,omitempty"`
	BinanceSymbol string `json:"binance_symbol,omitempty"`
}

// Shown reports whether the coin is part of the rotation.
func (c *Coin) Shown() bool {
	return c.Show == nil || *c.Show
}

// SetShown sets the visibility flag.
func (c *Coin) SetShown(v bool) {
	c.Show = &v
}

// PriceID returns the key used to look up the coin's price.
func (c *Coin) PriceID() string {
	if c.CoinGeckoID != "" {
		return c.CoinGeckoID
	}
	return c.ID
}

// RGB parses the "#rrggbb" colour, falling back to FallbackColor.
func (c *Coin) RGB() color.NRGBA {
	h := strings.TrimLeft(c.Color, "#")
	if len(h) != 6 {
		return FallbackColor
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return FallbackColor
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Coins is the content of the coins file.
type Coins struct {
	Coins []Coin `json:"coins"`
}

// LoadCoins reads a coins file.
func LoadCoins(path string) (*Coins, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	var c Coins
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &c, nil
}

// Save writes the coins file as indented JSON.
func (c *Coins) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return f.Close()
}

// Visible returns the coins that are shown, in file order.
func (c *Coins) Visible() []Coin {
	var out []Coin
	for _, coin := range c.Coins {
		if coin.Shown() {
			out = append(out, coin)
		}
	}
	return out
}

// Find returns the coin with the given id.
func (c *Coins) Find(id string) (Coin, bool) {
	for _, coin := range c.Coins {
		if coin.ID == id {
			return coin, true
		}
	}
	return Coin{}, false
}
