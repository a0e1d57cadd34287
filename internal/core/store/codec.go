package store

import (
	"encoding/json"

	"github.com/niksmo/shopcore/internal/core/domain"
)

// Persisted records keep the field names of the mobile client.
type (
	cartRecord struct {
		ID       string  `json:"_id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Image    string  `json:"image,omitempty"`
		Category string  `json:"category,omitempty"`
		Quantity int     `json:"quantity"`
	}

	wishlistRecord struct {
		ID    string  `json:"_id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Image string  `json:"image,omitempty"`
	}
)

type cartCodec struct{}

func (cartCodec) encode(lines []domain.CartLine) (string, error) {
	rs := make([]cartRecord, len(lines))
	for i, l := range lines {
		rs[i] = cartRecord(l)
	}
	b, err := json.Marshal(rs)
	return string(b), err
}

func (cartCodec) decode(data string) ([]domain.CartLine, error) {
	var rs []cartRecord
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, len(rs))
	for i, r := range rs {
		lines[i] = domain.CartLine(r)
	}
	return lines, nil
}

// sanitize drops lines without id, raises quantities below 1
// and merges duplicates into the first occurrence.
func (cartCodec) sanitize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ID == "" {
			continue
		}
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if i, ok := seen[l.ID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		seen[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

type wishlistCodec struct{}

func (wishlistCodec) encode(lines []domain.WishlistLine) (string, error) {
	rs := make([]wishlistRecord, len(lines))
	for i, l := range lines {
		rs[i] = wishlistRecord(l)
	}
	b, err := json.Marshal(rs)
	return string(b), err
}

func (wishlistCodec) decode(data string) ([]domain.WishlistLine, error) {
	var rs []wishlistRecord
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return nil, err
	}
	lines := make([]domain.WishlistLine, len(rs))
	for i, r := range rs {
		lines[i] = domain.WishlistLine(r)
	}
	return lines, nil
}

func (wishlistCodec) sanitize(
	lines []domain.WishlistLine,
) []domain.WishlistLine {
	out := make([]domain.WishlistLine, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.ID == "" {
			continue
		}
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}
