package types

import (
	"fmt"
	"strings"
)

// TradingPair identifies one independent order book by its base and quote assets.
// It is comparable and used directly as a map key.
type TradingPair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

func NewTradingPair(base, quote string) TradingPair {
	return TradingPair{Base: base, Quote: quote}
}

// String renders the pair as BASE-QUOTE
func (p TradingPair) String() string {
	return fmt.Sprintf("%s-%s", p.Base, p.Quote)
}

// Validate requires both symbols to be non-empty and free of the separator
func (p TradingPair) Validate() error {
	if strings.TrimSpace(p.Base) == "" || strings.TrimSpace(p.Quote) == "" {
		return fmt.Errorf("trading pair %q: base and quote must be non-empty", p.String())
	}
	if strings.Contains(p.Base, "-") || strings.Contains(p.Quote, "-") {
		return fmt.Errorf("trading pair %q: symbols cannot contain '-'", p.String())
	}
	return nil
}

// ParseTradingPair parses the BASE-QUOTE form produced by String
func ParseTradingPair(s string) (TradingPair, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return TradingPair{}, fmt.Errorf("invalid trading pair %q, expected BASE-QUOTE", s)
	}
	pair := NewTradingPair(strings.ToUpper(parts[0]), strings.ToUpper(parts[1]))
	if err := pair.Validate(); err != nil {
		return TradingPair{}, err
	}
	return pair, nil
}
