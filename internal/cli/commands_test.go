package cli

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/bid"
	"github.com/evcraddock/homebid/internal/db"
	"github.com/evcraddock/homebid/internal/property"
	"github.com/evcraddock/homebid/internal/web"
)

// liveServer starts a seeded API server and points the CLI at it with an
// empty config directory.
func liveServer(t *testing.T) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	srv := web.NewServer(d, auth.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, HashCost: bcrypt.MinCost})
	if err := srv.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("HB_SERVER_URL", ts.URL)
	t.Setenv("HB_TOKEN", "")
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(args...)
	if err != nil {
		t.Fatalf("hb %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// loginAs registers username (password equal to the name) and logs in.
func loginAs(t *testing.T, username string) string {
	t.Helper()
	out := mustRun(t, "register", "-u", username, "--email", username+"@example.com", "-p", username, "--format", "json")
	var reg map[string]string
	if err := json.Unmarshal([]byte(out), &reg); err != nil {
		t.Fatalf("decode register output %q: %v", out, err)
	}
	mustRun(t, "login", "-u", username, "-p", username)
	return reg["user_id"]
}

func TestStatusLoggedOut(t *testing.T) {
	liveServer(t)

	out := mustRun(t, "status")
	if !strings.Contains(out, "Token:   not configured") {
		t.Errorf("output = %q", out)
	}
}

func TestStatusUnreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HB_SERVER_URL", "http://127.0.0.1:1")

	out := mustRun(t, "status")
	if !strings.Contains(out, "cannot reach server") {
		t.Errorf("output = %q", out)
	}
}

func TestLoginPromptsAndStoresToken(t *testing.T) {
	liveServer(t)

	out, err := executeCommandWithInput("muser\nmuser\n", "login")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in as muser") {
		t.Errorf("output = %q", out)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Token == "" {
		t.Fatal("expected token to be saved")
	}

	out = mustRun(t, "status")
	if !strings.Contains(out, "muser (user)") || !strings.Contains(out, "authenticated") {
		t.Errorf("status output = %q", out)
	}

	out = mustRun(t, "logout")
	if !strings.Contains(out, "Logged out") {
		t.Errorf("logout output = %q", out)
	}
	if cfg, _ := loadConfig(); cfg.Token != "" {
		t.Error("expected token to be removed")
	}
	if out := mustRun(t, "logout"); !strings.Contains(out, "Not logged in") {
		t.Errorf("second logout output = %q", out)
	}
}

func TestLoginBadPassword(t *testing.T) {
	liveServer(t)

	_, err := executeCommand("login", "-u", "muser", "-p", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("err = %v, want invalid credentials", err)
	}
}

func TestStatusInvalidToken(t *testing.T) {
	liveServer(t)
	t.Setenv("HB_TOKEN", "not-a-token")

	out := mustRun(t, "status")
	if !strings.Contains(out, "re-authenticate") {
		t.Errorf("output = %q", out)
	}
}

func TestPropertyLifecycle(t *testing.T) {
	liveServer(t)
	loginAs(t, "seller")

	out := mustRun(t, "properties", "add", "--format", "json",
		"--title", "Corner lot", "--type", "sale", "--property-type", "land",
		"--price", "125000", "--area", "5000", "--city", "Tulsa", "--state", "OK",
		"--feature", "fenced, partly", "--feature", "corner", "--description", "Fixer upper")
	var created map[string]string
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	id := created["property_id"]
	if id == "" {
		t.Fatal("expected property id")
	}

	mustRun(t, "properties", "update", id, "--price", "119000", "--status", "pending")

	out = mustRun(t, "properties", "show", id, "--format", "json")
	var p property.Property
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if p.Price != 119000 || p.Status != "pending" || p.Title != "Corner lot" {
		t.Errorf("property = %+v", p)
	}
	if len(p.Features) != 2 || p.Features[0] != "fenced, partly" {
		t.Errorf("features = %v", p.Features)
	}

	if p.Description == nil || *p.Description != "Fixer upper" {
		t.Errorf("description = %v", p.Description)
	}

	mustRun(t, "properties", "update", id, "--clear-features", "--clear", "description")
	out = mustRun(t, "properties", "show", id, "--format", "json")
	p = property.Property{}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Features) != 0 {
		t.Errorf("features = %v, want cleared", p.Features)
	}
	if p.Description != nil {
		t.Errorf("description = %q, want cleared", *p.Description)
	}
	if p.Price != 119000 {
		t.Errorf("price = %v, want unchanged", p.Price)
	}

	out = mustRun(t, "properties", "list", "--city", "Tulsa")
	if !strings.Contains(out, "Corner lot") || !strings.Contains(out, "Total: 1 properties") {
		t.Errorf("list output = %q", out)
	}

	mustRun(t, "properties", "delete", id)
	if _, err := executeCommand("properties", "show", id); err == nil || !strings.Contains(err.Error(), "Property not found") {
		t.Errorf("show after delete: %v", err)
	}
}

func TestPropertyAddMissingField(t *testing.T) {
	liveServer(t)
	loginAs(t, "seller")

	_, err := executeCommand("properties", "add", "--title", "No price")
	if err == nil || !strings.Contains(err.Error(), "Missing required field: type") {
		t.Errorf("err = %v", err)
	}
}

func TestPropertyUpdateFlagErrors(t *testing.T) {
	liveServer(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no flags", []string{"properties", "update", "p1"}},
		{"clear required field", []string{"properties", "update", "p1", "--clear", "title"}},
		{"set and clear", []string{"properties", "update", "p1", "--street", "1 Elm", "--clear", "street"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBidsAndContracts(t *testing.T) {
	liveServer(t)
	agentID := loginAs(t, "agent")
	loginAs(t, "seller")

	out := mustRun(t, "properties", "add", "--format", "json",
		"--title", "Duplex", "--type", "sale", "--property-type", "multi",
		"--price", "300000", "--area", "2200", "--city", "Omaha", "--state", "NE")
	var created map[string]string
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	pid := created["property_id"]

	out = mustRun(t, "contracts", "create", pid, "--agent", agentID,
		"--commission", "3", "--start", "2026-01-01", "--end", "2026-06-30")
	if !strings.Contains(out, "Contract") {
		t.Errorf("create output = %q", out)
	}
	out = mustRun(t, "contracts", "list")
	if !strings.Contains(out, "2026-01-01 - 2026-06-30") {
		t.Errorf("contract list = %q", out)
	}

	loginAs(t, "buyer")
	out = mustRun(t, "bids", "place", pid, "--amount", "290000", "-m", "flexible close", "--format", "json")
	var placed map[string]string
	if err := json.Unmarshal([]byte(out), &placed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	bidID := placed["bid_id"]

	if _, err := executeCommand("bids", "status", bidID, "accepted"); err == nil ||
		!strings.Contains(err.Error(), "Unauthorized to update this bid") {
		t.Errorf("bidder status change: %v", err)
	}

	out = mustRun(t, "bids", "list", "--format", "json")
	var mine []*bid.Bid
	if err := json.Unmarshal([]byte(out), &mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != bid.StatusPending {
		t.Errorf("my bids = %+v", mine)
	}

	mustRun(t, "login", "-u", "seller", "-p", "seller")
	mustRun(t, "bids", "status", bidID, "accepted")

	out = mustRun(t, "bids", "list", "--property", pid)
	if !strings.Contains(out, "accepted") || !strings.Contains(out, "$290,000") {
		t.Errorf("property bids = %q", out)
	}
}

func TestAdminCommands(t *testing.T) {
	liveServer(t)
	victim := loginAs(t, "victim")

	if _, err := executeCommand("admin", "users"); err == nil {
		t.Error("expected non-admin to be refused")
	}

	mustRun(t, "login", "-u", "mvc", "-p", "mvc")
	out := mustRun(t, "admin", "users")
	for _, want := range []string{"mvc", "muser", "victim"} {
		if !strings.Contains(out, want) {
			t.Errorf("users output missing %q:\n%s", want, out)
		}
	}

	mustRun(t, "admin", "delete-user", victim)
	if out := mustRun(t, "admin", "users"); strings.Contains(out, "victim") {
		t.Errorf("victim still listed:\n%s", out)
	}

	if out := mustRun(t, "admin", "bids"); !strings.Contains(out, "No bids found.") {
		t.Errorf("bids output = %q", out)
	}
	if out := mustRun(t, "admin", "contracts", "--format", "json"); strings.TrimSpace(out) != "[]" {
		t.Errorf("contracts output = %q", out)
	}
}
