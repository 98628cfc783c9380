package holders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"token-holder-lab/internal/domain"
)

const topHoldersPayload = `{
	"addressTopHolders": {
		"bsc": [
			{
				"address": {
					"address": "0x1111111111111111111111111111111111111111",
					"arkhamEntity": {"name": "Binance", "type": "cex"},
					"arkhamLabel": {"name": "Binance Hot Wallet"}
				},
				"balance": 1500000.5,
				"pctOfCap": 3.2
			},
			{
				"address": {
					"address": "0x2222222222222222222222222222222222222222"
				},
				"balance": 900000,
				"pctOfCap": 1.9
			}
		],
		"arbitrum": [
			{
				"address": {
					"address": "0x3333333333333333333333333333333333333333",
					"arkhamLabel": {"name": "Deposit"}
				},
				"balance": 400000,
				"pctOfCap": 0.8
			}
		]
	}
}`

func TestFetchTopHolders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("chain") != "bsc" {
			t.Errorf("expected chain=bsc, got %q", r.URL.Query().Get("chain"))
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("expected X-API-Key header, got %q", r.Header.Get("X-API-Key"))
		}
		w.Write([]byte(topHoldersPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAPIKey("test-key"))
	records, err := client.FetchTopHolders(context.Background(), domain.ChainBSC, "0xtoken")
	if err != nil {
		t.Fatalf("FetchTopHolders: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Buckets flatten in sorted key order: arbitrum before bsc.
	if records[0].Address != "0x3333333333333333333333333333333333333333" {
		t.Errorf("expected arbitrum bucket first, got %s", records[0].Address)
	}
	if records[0].EntityLabel == nil || *records[0].EntityLabel != "Deposit" {
		t.Errorf("expected Deposit label, got %v", records[0].EntityLabel)
	}

	first := records[1]
	if first.Balance != 1500000.5 {
		t.Errorf("expected balance 1500000.5, got %f", first.Balance)
	}
	if first.EntityName == nil || *first.EntityName != "Binance" {
		t.Errorf("expected entity name Binance, got %v", first.EntityName)
	}
	if first.EntityType == nil || *first.EntityType != "cex" {
		t.Errorf("expected entity type cex, got %v", first.EntityType)
	}

	bare := records[2]
	if bare.EntityName != nil || bare.EntityType != nil || bare.EntityLabel != nil {
		t.Error("expected nil entity fields for unlabeled holder")
	}
}

func TestFetchTopHolders_Validation(t *testing.T) {
	client := NewClient("http://unused")

	if _, err := client.FetchTopHolders(context.Background(), domain.Chain("tron"), "0xtoken"); err == nil {
		t.Error("expected error for unknown chain")
	}
	if _, err := client.FetchTopHolders(context.Background(), domain.ChainBSC, ""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestFetchTopHolders_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"addressTopHolders": {}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	records, err := client.FetchTopHolders(context.Background(), domain.ChainBSC, "0xtoken")
	if err != nil {
		t.Fatalf("FetchTopHolders: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchTopHolders_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
	if _, err := client.FetchTopHolders(context.Background(), domain.ChainBSC, "0xtoken"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts (initial + 2 retries), got %d", calls.Load())
	}
}

func TestFetchTopHolders_MalformedBodyNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	if _, err := client.FetchTopHolders(context.Background(), domain.ChainBSC, "0xtoken"); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected single attempt for malformed payload, got %d", calls.Load())
	}
}

func TestFetchTopHolders_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, WithMaxRetries(5), WithRetryDelay(time.Second))
	if _, err := client.FetchTopHolders(ctx, domain.ChainBSC, "0xtoken"); err == nil {
		t.Fatal("expected context error")
	}
}
