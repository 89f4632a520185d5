package app

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skill-swap/internal/config"
	"skill-swap/internal/database/seeder"
)

func TestListenAddr(t *testing.T) {
	cases := map[string]string{"8080": ":8080", ":9090": ":9090", " 3000 ": ":3000"}
	for in, want := range cases {
		got, err := ListenAddr(in)
		if err != nil || got != want {
			t.Fatalf("ListenAddr(%q): expected %q, got %q (err=%v)", in, want, got, err)
		}
	}
	if _, err := ListenAddr("  "); err == nil {
		t.Fatalf("expected error for empty port")
	}
}

func newMemoryApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Config{
		App:    config.AppConfig{AppName: "skill-swap", Environment: "test", HTTPPort: "0", RequestTimeout: 5 * time.Second},
		Redis:  config.RedisConfig{Disabled: true, EventChannel: "swaps:events", TTL: time.Minute},
		JWT:    config.JWTConfig{AccessSecret: "test-secret", AccessExpiresIn: time.Minute},
		Notify: config.NotifyConfig{Workers: 1, QueueSize: 8},
	}
	c, err := NewContainer(context.Background(), cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("expected container, got %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return New(c)
}

func TestHealthInMemoryMode(t *testing.T) {
	a := newMemoryApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Database struct{ Status string } `json:"database"`
			Redis    struct{ Status string } `json:"redis"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Database.Status != "disabled" || body.Data.Redis.Status != "disabled" {
		t.Fatalf("expected disabled dependencies, got %+v", body.Data)
	}
}

func TestSwapRoutesRequireToken(t *testing.T) {
	a := newMemoryApp(t)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/swaps/active", nil))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProposeBetweenDemoUsers(t *testing.T) {
	a := newMemoryApp(t)
	ana, ben := seeder.DemoUsers[0].User, seeder.DemoUsers[1].User

	tok, err := a.Container.JWT.GenerateAccessToken(ana.ID, ana.Email)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	body := `{"counterpart_id":"` + ben.ID.String() + `","skill_offered":"Logo Design","skill_requested":"web development"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/swaps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := a.Fiber.Test(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/swaps/active", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = a.Fiber.Test(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var list struct {
		Data []struct {
			Status     string `json:"status"`
			Role       string `json:"role"`
			MatchScore int    `json:"match_score"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Status != "pending" || list.Data[0].Role != "proposer" {
		t.Fatalf("unexpected active list: %+v", list.Data)
	}
	if list.Data[0].MatchScore <= 0 {
		t.Fatalf("expected positive match score, got %d", list.Data[0].MatchScore)
	}
}

func TestOutsiderGetsForbiddenOnReadAndWrite(t *testing.T) {
	a := newMemoryApp(t)
	ana, ben, chen := seeder.DemoUsers[0].User, seeder.DemoUsers[1].User, seeder.DemoUsers[2].User

	anaTok, err := a.Container.JWT.GenerateAccessToken(ana.ID, ana.Email)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	chenTok, err := a.Container.JWT.GenerateAccessToken(chen.ID, chen.Email)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	body := `{"counterpart_id":"` + ben.ID.String() + `","skill_offered":"Logo Design","skill_requested":"Web Development"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/swaps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+anaTok)
	resp, err := a.Fiber.Test(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.Data.ID == "" {
		t.Fatalf("decode created swap: %v", err)
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/swaps/" + created.Data.ID},
		{http.MethodPost, "/api/v1/swaps/" + created.Data.ID + "/cancel"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+chenTok)
		resp, err := a.Fiber.Test(req)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}
