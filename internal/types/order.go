package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side identifies which side of the book an order belongs to
type Side int

const (
	Bid Side = iota + 1
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Opposite returns the side an order of this side matches against
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Valid reports whether s is Bid or Ask
func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// ParseSide accepts "bid"/"buy" and "ask"/"sell"
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

// Order is a quantity request on one side of the book.
// Size is the remaining quantity and only ever decreases through fills.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	Side      Side            `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Timestamp time.Time       `json:"timestamp"`

	// Seq is assigned by the order book on placement and orders arrival
	// across both sides of one book.
	Seq uint64 `json:"seq,omitempty"`
}

// NewOrder creates an order with a fresh ID
func NewOrder(side Side, size decimal.Decimal) *Order {
	return &Order{
		ID:        uuid.New(),
		Side:      side,
		Size:      size,
		Timestamp: time.Now().UTC(),
	}
}

// IsFilled reports whether no quantity remains
func (o *Order) IsFilled() bool {
	return o.Size.Sign() <= 0
}

func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s", o.ID, o.Side, o.Size)
}
