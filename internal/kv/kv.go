package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys under which the stores persist their collections.
const (
	KeyWishlist   = "wishlist"
	KeyCart       = "cart"
	KeyComparison = "comparisonList"
)

// Store is a synchronous, string-keyed, string-valued key/value store.
// A missing key is reported as ok == false with a nil error; errors are
// reserved for failures of the backing store.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Deleter is implemented by stores that can drop keys.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// EncodeJSON serializes a collection for storage.
func EncodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// DecodeJSON parses a stored collection into dst.
func DecodeJSON(value string, dst any) error {
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}
