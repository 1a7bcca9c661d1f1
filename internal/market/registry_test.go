package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tradewatch/whale-data/internal/api"
)

func testServer(t *testing.T, marketCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/markets":
			json.NewEncoder(w).Encode([]api.APIMarket{
				{ConditionID: "0xa", Question: "Will A happen?", Volume24h: 900000, TokenIDs: []string{"a-yes", "a-no"}},
				{ConditionID: "0xb", Question: "Will B happen?", Volume24h: 500000, TokenIDs: []string{"b-yes", "b-no"}},
			})
		case strings.HasPrefix(r.URL.Path, "/markets/"):
			if marketCalls != nil {
				marketCalls.Add(1)
			}
			id := strings.TrimPrefix(r.URL.Path, "/markets/")
			if id == "0xmissing" {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(api.APIMarket{ConditionID: id, Question: "Fetched " + id})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestRegistry_StartAndTopMarkets(t *testing.T) {
	server := testServer(t, nil)
	defer server.Close()

	client := api.NewClient(server.URL)
	r := NewRegistry(DefaultConfig(), client, nil)

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		r.Stop(stopCtx)
	}()

	top := r.TopMarkets()
	if len(top) != 2 {
		t.Fatalf("TopMarkets = %d entries, want 2", len(top))
	}
	if top[0].ConditionID != "0xa" {
		t.Errorf("top[0] = %q, want 0xa", top[0].ConditionID)
	}

	// Titles from the top list are cached without extra fetches.
	title, ok := r.Title(ctx, "0xa")
	if !ok || title != "Will A happen?" {
		t.Errorf("Title(0xa) = %q, %v", title, ok)
	}
}

func TestRegistry_TitleFetchAndCache(t *testing.T) {
	var marketCalls atomic.Int32
	server := testServer(t, &marketCalls)
	defer server.Close()

	client := api.NewClient(server.URL)
	r := NewRegistry(DefaultConfig(), client, nil)
	r.ctx = context.Background()

	ctx := context.Background()

	title, ok := r.Title(ctx, "0xnew")
	if !ok || title != "Fetched 0xnew" {
		t.Fatalf("Title(0xnew) = %q, %v", title, ok)
	}

	// Second lookup hits the cache.
	r.Title(ctx, "0xnew")
	if got := marketCalls.Load(); got != 1 {
		t.Errorf("market fetches = %d, want 1 (cached)", got)
	}
}

func TestRegistry_TitleNotFound(t *testing.T) {
	server := testServer(t, nil)
	defer server.Close()

	client := api.NewClient(server.URL, api.WithRetries(0, time.Millisecond))
	r := NewRegistry(DefaultConfig(), client, nil)

	if _, ok := r.Title(context.Background(), "0xmissing"); ok {
		t.Error("Title(0xmissing) resolved, want not-found")
	}
	if _, ok := r.Title(context.Background(), ""); ok {
		t.Error("Title(\"\") resolved, want not-found")
	}
}

func TestRegistry_SurvivesInitialSyncFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithRetries(0, time.Millisecond))
	r := NewRegistry(DefaultConfig(), client, nil)

	// Transient upstream failure must not prevent startup.
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(stopCtx)

	if len(r.TopMarkets()) != 0 {
		t.Error("TopMarkets should be empty after failed sync")
	}
}
