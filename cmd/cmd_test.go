package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tickethub-cli/auth"
	"tickethub-cli/checkout"
	"tickethub-cli/model"
	"tickethub-cli/sandbox"
)

func setTestHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
}

func startSandbox(t *testing.T, opts sandbox.Options) string {
	t.Helper()
	setTestHome(t)
	opts.Secret = "cmd-test"
	opts.BcryptCost = bcrypt.MinCost
	srv, err := sandbox.New(opts, zap.NewNop())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Setenv("TICKETHUB_BASE_URL", ts.URL)
	return ts.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(Build{Version: "test"})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: expected nil error, got %v\n%s", args, err, out)
	}
	return out
}

func writeForm(t *testing.T) string {
	t.Helper()
	form := checkout.Form{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "+91 98765 43210",
		Method:    model.PaymentUPI,
		UPI:       checkout.UPIDetails{Id: "asha@okbank"},
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "KA",
		ZipCode:   "560001",
	}
	data, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}
	path := filepath.Join(t.TempDir(), "form.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write form: %v", err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "version")
	if strings.TrimSpace(out) != "tickethub test" {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestBuildString(t *testing.T) {
	if got := (Build{Version: "1.2.0", Commit: "abc123"}).String(); got != "tickethub 1.2.0 (abc123)" {
		t.Fatalf("unexpected build string: %s", got)
	}
	if got := (Build{}).String(); got != "tickethub dev" {
		t.Fatalf("unexpected build string: %s", got)
	}
}

func TestEventsList_FiltersByCategory(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	out := mustRun(t, "events", "list", "--category", "concerts")
	if !strings.Contains(out, "Arena Night Live") {
		t.Fatalf("expected concert listed, got:\n%s", out)
	}
	if strings.Contains(out, "City Derby") {
		t.Fatalf("expected sports event filtered out, got:\n%s", out)
	}
}

func TestEventsList_RejectsUnknownSort(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	if _, err := run(t, "events", "list", "--sort", "alphabetical"); err == nil {
		t.Fatal("expected error for unknown sort")
	}
}

func TestEventsShow_RemembersEvent(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	out := mustRun(t, "events", "show", "3")
	if !strings.Contains(out, "City Derby") || !strings.Contains(out, "$60.00") {
		t.Fatalf("unexpected detail output:\n%s", out)
	}
	recent := mustRun(t, "events", "recent")
	if !strings.HasPrefix(recent, "3\tCity Derby") {
		t.Fatalf("expected event in history, got %q", recent)
	}
}

func TestBookingFlow(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	mustRun(t, "login", "--email", sandbox.DemoUserEmail, "--password", sandbox.DemoUserPassword)

	out := mustRun(t, "seats", "2", "--select", "A1,A2")
	if !strings.Contains(out, "A1, A2") || !strings.Contains(out, "$105.00") {
		t.Fatalf("expected order summary with total 105, got:\n%s", out)
	}
	if strings.Contains(out, "estimated") {
		t.Fatalf("expected backend layout, got:\n%s", out)
	}

	out = mustRun(t, "checkout", "--form", writeForm(t))
	if !strings.Contains(out, "Booking confirmed") || !strings.Contains(out, "$105.00") {
		t.Fatalf("unexpected checkout output:\n%s", out)
	}

	out = mustRun(t, "bookings")
	if !strings.Contains(out, "Upcoming bookings (1)") || !strings.Contains(out, "Arena Night Live") {
		t.Fatalf("expected booking on dashboard, got:\n%s", out)
	}

	if _, err := run(t, "checkout", "--form", writeForm(t)); err == nil {
		t.Fatal("expected checkout to fail once the draft is cleared")
	}

	out = mustRun(t, "seats", "2")
	if !strings.Contains(out, "No seats selected.") {
		t.Fatalf("expected empty selection after checkout, got:\n%s", out)
	}
}

func TestSeats_UnavailableSeatRejected(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	// Event 2 has 20 of 24 seats available, so B12 is booked.
	if _, err := run(t, "seats", "2", "--select", "B12"); err == nil {
		t.Fatal("expected error selecting a booked seat")
	}
	if _, err := run(t, "seats", "2", "--select", "12B"); !errors.Is(err, model.ErrInvalidSeatID) {
		t.Fatalf("expected invalid seat id, got %v", err)
	}
}

func TestSeats_GeneratedLayoutIsFlagged(t *testing.T) {
	startSandbox(t, sandbox.Options{SeatsUnavailable: true})

	out := mustRun(t, "seats", "1", "--select", "A1")
	if !strings.Contains(out, "Seat availability is estimated") {
		t.Fatalf("expected estimated banner, got:\n%s", out)
	}
}

func TestCheckout_RequiresLogin(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	mustRun(t, "seats", "2", "--select", "A3")
	_, err := run(t, "checkout", "--form", writeForm(t))
	if err == nil || err.Error() != checkout.MsgLoginRequired {
		t.Fatalf("expected login required, got %v", err)
	}

	// The selection survives the refused checkout.
	out := mustRun(t, "seats", "2")
	if !strings.Contains(out, "Selected: A3") {
		t.Fatalf("expected selection kept, got:\n%s", out)
	}
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	mustRun(t, "login", "--email", sandbox.DemoUserEmail, "--password", sandbox.DemoUserPassword)
	if _, err := run(t, "admin", "users"); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	mustRun(t, "logout")
	mustRun(t, "login", "--email", sandbox.DemoAdminEmail, "--password", sandbox.DemoAdminPassword)
	out := mustRun(t, "admin", "events")
	if !strings.Contains(out, "Director's Cut Screening") {
		t.Fatalf("expected unpublished event in admin listing, got:\n%s", out)
	}
	out = mustRun(t, "admin", "users")
	if !strings.Contains(out, sandbox.DemoUserEmail) {
		t.Fatalf("expected demo user listed, got:\n%s", out)
	}
}

func TestWhoami(t *testing.T) {
	startSandbox(t, sandbox.Options{})

	if out := mustRun(t, "whoami"); !strings.Contains(out, "Not logged in.") {
		t.Fatalf("unexpected output: %q", out)
	}
	mustRun(t, "register", "--name", "Ravi Kumar", "--email", "ravi@example.com", "--password", "secret1")
	if out := mustRun(t, "whoami"); !strings.Contains(out, "Ravi Kumar") || !strings.Contains(out, "USER") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSplitBookings(t *testing.T) {
	upcoming, past := splitBookings([]model.Booking{
		{Id: "1", Status: model.BookingConfirmed},
		{Id: "2", Status: model.BookingCancelled},
		{Id: "3", Status: model.BookingCompleted},
	})
	if len(upcoming) != 1 || upcoming[0].Id != "1" {
		t.Fatalf("unexpected upcoming: %+v", upcoming)
	}
	if len(past) != 2 {
		t.Fatalf("unexpected past: %+v", past)
	}
}
