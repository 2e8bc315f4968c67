package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gh "github.com/google/go-github/v68/github"
)

// newTestServer serves a single user document at /users/<login>.
func newTestServer(t *testing.T, login, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/"+login, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestResolveAuthor(t *testing.T) {
	server := newTestServer(t, "jane",
		`{"login": "jane", "name": "Jane Doe", "email": "jane@example.com"}`)

	client, err := NewClient("", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	author, err := client.ResolveAuthor(context.Background(), "jane")
	if err != nil {
		t.Fatalf("ResolveAuthor() error = %v", err)
	}

	if author.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", author.Name, "Jane Doe")
	}
	if author.Email != "jane@example.com" {
		t.Errorf("Email = %q, want %q", author.Email, "jane@example.com")
	}
	if author.Login != "jane" {
		t.Errorf("Login = %q, want %q", author.Login, "jane")
	}
}

func TestResolveAuthorFallbacks(t *testing.T) {
	server := newTestServer(t, "ghost", `{"login": "ghost"}`)

	client, err := NewClient("", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	author, err := client.ResolveAuthor(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ResolveAuthor() error = %v", err)
	}

	if author.Name != "ghost" {
		t.Errorf("Name = %q, want login fallback %q", author.Name, "ghost")
	}
	if author.Email != "ghost@users.noreply.github.com" {
		t.Errorf("Email = %q, want noreply fallback", author.Email)
	}
}

func TestResolveAuthorEmptyLogin(t *testing.T) {
	client, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.ResolveAuthor(context.Background(), ""); err == nil {
		t.Fatal("ResolveAuthor(\"\") should fail, got nil error")
	}
}

func TestResolveAuthorNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/nobody", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient("", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.ResolveAuthor(context.Background(), "nobody")
	if err == nil {
		t.Fatal("ResolveAuthor() for missing user should fail, got nil error")
	}
	if !strings.Contains(err.Error(), "failed to fetch user nobody") {
		t.Errorf("error = %q, want fetch failure for nobody", err.Error())
	}
}

func TestNewClientSendsToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/jane", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"login": "jane"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient("secret-token", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.ResolveAuthor(context.Background(), "jane"); err != nil {
		t.Fatalf("ResolveAuthor() error = %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer secret-token")
	}
}

func TestRateLimitLow(t *testing.T) {
	tests := []struct {
		name string
		rate gh.Rate
		want bool
	}{
		{"no rate headers", gh.Rate{}, false},
		{"plenty remaining", gh.Rate{Limit: 5000, Remaining: 4000}, false},
		{"at threshold", gh.Rate{Limit: 5000, Remaining: lowRateThreshold}, false},
		{"below threshold", gh.Rate{Limit: 5000, Remaining: 10}, true},
		{"exhausted", gh.Rate{Limit: 5000, Remaining: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rateLimitLow(tt.rate); got != tt.want {
				t.Errorf("rateLimitLow(%+v) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}
}

func TestNewClientInvalidBaseURL(t *testing.T) {
	if _, err := NewClient("", WithBaseURL("://not-a-url")); err == nil {
		t.Fatal("NewClient() with invalid base url should fail, got nil error")
	}
}
