// Package main seeds a demo shopping session through the HTTP API of a
// running storefront: featured products are wished for, the first ones are
// added to the cart and a few are put up for comparison.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v >= 0 {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

type seeder struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *seeder) do(ctx context.Context, method, path string, body, dst any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Session-ID", s.sessionID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("HTTP %d: decode response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		if env.Error != nil {
			return fmt.Errorf("HTTP %d: %s: %s", resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if dst != nil {
		return json.Unmarshal(env.Data, dst)
	}
	return nil
}

// --------------------------------------------------------------------------
// Seeding
// --------------------------------------------------------------------------

type product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type plan struct {
	Wishlist   int
	Cart       int
	Comparison int
}

type summary struct {
	Wishlisted []string
	Carted     []string
	Compared   []string
}

func (s *seeder) seed(ctx context.Context, p plan) (summary, error) {
	var sum summary

	var page struct {
		Data []product `json:"data"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/v1/catalog/products?featured=true&in_stock=true&per_page=100", nil, &page); err != nil {
		return sum, fmt.Errorf("list featured products: %w", err)
	}
	if len(page.Data) == 0 {
		return sum, fmt.Errorf("catalog has no featured products")
	}
	log.Printf("Found %d featured products.", len(page.Data))

	for _, pr := range page.Data[:min(p.Wishlist, len(page.Data))] {
		if err := s.do(ctx, http.MethodPost, "/api/v1/wishlist", map[string]string{"product_id": pr.ID}, nil); err != nil {
			return sum, fmt.Errorf("wishlist %s: %w", pr.ID, err)
		}
		sum.Wishlisted = append(sum.Wishlisted, pr.ID)
		log.Printf("  Wishlisted: %s", pr.Name)
	}

	for i, pr := range page.Data[:min(p.Cart, len(page.Data))] {
		body := map[string]any{"product_id": pr.ID, "quantity": i + 1}
		if err := s.do(ctx, http.MethodPost, "/api/v1/cart/items", body, nil); err != nil {
			return sum, fmt.Errorf("add %s to cart: %w", pr.ID, err)
		}
		sum.Carted = append(sum.Carted, pr.ID)
		log.Printf("  Added to cart: %s x%d", pr.Name, i+1)
	}

	for _, pr := range page.Data[:min(p.Comparison, len(page.Data))] {
		if err := s.do(ctx, http.MethodPost, "/api/v1/comparison", map[string]string{"product_id": pr.ID}, nil); err != nil {
			return sum, fmt.Errorf("compare %s: %w", pr.ID, err)
		}
		sum.Compared = append(sum.Compared, pr.ID)
	}

	// Seeding notifications are not meant for the shopper.
	if err := s.do(ctx, http.MethodGet, "/api/v1/notifications", nil, nil); err != nil {
		return sum, fmt.Errorf("drain notifications: %w", err)
	}

	return sum, nil
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	s := &seeder{
		baseURL:   getEnv("STOREFRONT_URL", "http://localhost:8080"),
		sessionID: getEnv("SEED_SESSION_ID", "demo-session"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	p := plan{
		Wishlist:   getEnvInt("SEED_WISHLIST", 3),
		Cart:       getEnvInt("SEED_CART", 2),
		Comparison: getEnvInt("SEED_COMPARISON", 3),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Seeding session %q at %s...", s.sessionID, s.baseURL)
	sum, err := s.seed(ctx, p)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("Done: %d wishlisted, %d in cart, %d compared.", len(sum.Wishlisted), len(sum.Carted), len(sum.Compared))
}
