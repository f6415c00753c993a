package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/diewo77/erp-reports/internal/config"
)

func backend(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/reports/trial-balance":
			fmt.Fprint(w, `{"accounts":[{"code":"1000","name":"Cash","debit":1500,"credit":0},{"code":"4000","name":"Sales","debit":0,"credit":1500}],
"total_debit":1500,"total_credit":1500,"is_balanced":true}`)
		case "/api/v1/reports/work-order-costs":
			fmt.Fprint(w, `{"work_orders":[]}`)
		case "/api/v1/solar-proposals/3/payback":
			fmt.Fprint(w, `{"id":3,"total_investment":1000,"yearly_savings":[300,300,300,300]}`)
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runContext(t, context.Background(), args...)
	return out, err
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, int, error) {
	t.Helper()
	var hits atomic.Int32
	srv := backend(t, &hits)
	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.Cache.TTL = time.Minute
	cfg.Locale = config.LocaleConfig{Lang: "en", Currency: "THB", CurrencySymbol: "THB ", Timezone: "UTC"}

	prev := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = prev })

	var out bytes.Buffer
	app := newApp(cfg, &out)
	app.ErrWriter = &bytes.Buffer{}
	err := app.RunContext(ctx, append([]string{"reportctl", "--api", srv.URL, "--token", "cli-token"}, args...))
	return out.String(), int(hits.Load()), err
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"trial-balance", "vat-monthly", "year*", "this_month"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
}

func TestShowTable(t *testing.T) {
	out, err := run(t, "show", "--range", "last_month", "trial-balance")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Trial balance", "Cash", "THB 1,500.00", "Balanced"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowJSONAndCSV(t *testing.T) {
	out, err := run(t, "show", "--format", "json", "trial-balance")
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if doc["status"] != "success" || doc["data"] == nil {
		t.Fatalf("doc = %v", doc)
	}

	out, err = run(t, "show", "-o", "csv", "trial-balance")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Code,Account,Debit,Credit\n") {
		t.Fatalf("csv = %q", out)
	}
}

func TestShowEmptyAndFailed(t *testing.T) {
	out, err := run(t, "show", "work-order-costs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no data for this filter") {
		t.Fatalf("empty output = %q", out)
	}

	out, err = run(t, "show", "cogs")
	if err == nil {
		t.Fatalf("expected failure exit")
	}
	if !strings.Contains(out, "failed to load report") || strings.Contains(out, "nope") {
		t.Fatalf("failed output = %q", out)
	}
}

func TestShowBadParam(t *testing.T) {
	if _, err := run(t, "show", "-p", "oops", "trial-balance"); err == nil {
		t.Fatalf("expected error for malformed param")
	}
	if _, err := run(t, "show", "nope"); err == nil {
		t.Fatalf("expected error for unknown report")
	}
}

func TestPayback(t *testing.T) {
	out, err := run(t, "payback", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Break-even year: 4") || !strings.Contains(out, "THB 200.00") {
		t.Fatalf("payback output:\n%s", out)
	}
}

func TestWatchRefetchesAndPrintsChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	out, hits, err := runContext(t, ctx, "watch", "--interval", "20ms", "trial-balance")
	if err != nil {
		t.Fatal(err)
	}
	if hits < 2 {
		t.Fatalf("backend hit %d times, want a refetch per tick", hits)
	}
	// the payload never changes, so it is printed once
	if n := strings.Count(out, "# trial-balance "); n != 1 {
		t.Fatalf("printed %d times:\n%s", n, out)
	}
	if !strings.Contains(out, "Cash") {
		t.Fatalf("watch output:\n%s", out)
	}
}

func TestWatchRejectsUnknownReport(t *testing.T) {
	if _, err := run(t, "watch", "--interval", "1s", "nope"); err == nil {
		t.Fatal("expected error for unknown report")
	}
}
