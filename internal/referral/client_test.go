package referral_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memeindex-bot/internal/referral"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/referral/abc123":
			fmt.Fprint(w, `{"referralCode":"abc123","owner":"42"}`)
		case "/api/referral/empty":
			fmt.Fprint(w, `{"owner":"42"}`)
		case "/api/referral/garbage":
			fmt.Fprint(w, `<html>`)
		default:
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := referral.NewClient(srv.URL+"/", time.Second)

	code, err := client.Verify(context.Background(), "abc123")
	if err != nil || code != "abc123" {
		t.Fatalf("Verify(abc123) = %q, %v", code, err)
	}

	if _, err := client.Verify(context.Background(), "empty"); !errors.Is(err, referral.ErrUnknownCode) {
		t.Errorf("Verify(empty) error = %v, want ErrUnknownCode", err)
	}
	if _, err := client.Verify(context.Background(), "garbage"); err == nil {
		t.Error("Verify(garbage) succeeded")
	}
	if _, err := client.Verify(context.Background(), "missing"); err == nil {
		t.Error("Verify(missing) succeeded")
	}
}

func TestVerifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := referral.NewClient(srv.URL, 50*time.Millisecond)
	if _, err := client.Verify(context.Background(), "slow"); err == nil {
		t.Fatal("Verify succeeded despite timeout")
	}
}
