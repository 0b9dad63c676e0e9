package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestFindTitleSubstringMatch(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "iphone" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":7,"title":"iPhone Case","price":12.5,"description":"a case"},
			{"id":42,"title":"iPhone 15","price":999.99,"description":"the phone"}
		]}`))
	})

	p, err := client.Find(context.Background(), "iphone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "7" {
		t.Fatalf("expected the first title match, got id=%s", p.ID)
	}
	if p.Price != 12.5 {
		t.Fatalf("unexpected price: %f", p.Price)
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[{"id":42,"title":"iPhone 15","price":999.99,"description":"d"}]}`))
	})

	p, err := client.Find(context.Background(), "IPHONE 15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "iPhone 15" {
		t.Fatalf("unexpected title: %s", p.Title)
	}
}

func TestFindNoMatch(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	})

	_, err := client.Find(context.Background(), "unobtainium")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindUnreachableCatalogIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Find(context.Background(), "mouse")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("unreachable catalog must surface as not found, got %v", err)
	}
}

func TestFindServerErrorIsNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Find(context.Background(), "mouse")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLimit(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("unexpected limit: %q", got)
		}
		_, _ = w.Write([]byte(`{"products":[{"id":1,"title":"A","price":1},{"id":2,"title":"B","price":2}]}`))
	})

	products, err := client.List(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestByCategoryBareArrayResponse(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/category/electronics" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":3,"title":"Laptop","price":1500,"category":"electronics"}]`))
	})

	products, err := client.ByCategory(context.Background(), "electronics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Category != "electronics" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestRecommendationsSampleSize(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[
			{"id":1,"title":"A","price":1},{"id":2,"title":"B","price":2},
			{"id":3,"title":"C","price":3},{"id":4,"title":"D","price":4},
			{"id":5,"title":"E","price":5},{"id":6,"title":"F","price":6}
		]}`))
	})

	products, err := client.Recommendations(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(products))
	}
	seen := map[string]bool{}
	for _, p := range products {
		if seen[p.ID] {
			t.Fatalf("duplicate recommendation id=%s", p.ID)
		}
		seen[p.ID] = true
	}
}
