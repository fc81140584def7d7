package console

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"gamefilter/internal/application/admission"
	"gamefilter/internal/domain/filter"
)

type memRepo struct {
	lines []string
}

func (r *memRepo) Load(context.Context) ([]string, error) { return r.lines, nil }
func (r *memRepo) Save(_ context.Context, lines []string) error {
	r.lines = append([]string(nil), lines...)
	return nil
}

func newTestConsole() (*Console, *admission.Service, *memRepo, *filter.ManualClock) {
	repo := &memRepo{}
	clock := filter.NewManualClock(0)
	svc := admission.NewService(repo, clock)
	return New(svc), svc, repo, clock
}

func TestConsole_Exec(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr error
	}{
		{"empty line", "   ", nil, nil},
		{"unknown command", "kick 3", []string{`Unknown command "kick"`}, ErrUnknownCommand},
		{"addip usage", "addip", []string{"Usage: addip <ip-mask> [time-mins]"}, ErrUsage},
		{"removeip usage", "removeip", []string{"Usage: removeip <ip-mask>"}, ErrUsage},
		{"ban usage", "ban", []string{"Usage: ban <steamid64> [time-mins]"}, ErrUsage},
		{"mute usage", "mute", []string{"Usage: mute <steamid64> <shadow 0/1> [time-mins]"}, ErrUsage},
		{"removeban usage", "removeban", []string{"Usage: removeban <steamid64>"}, ErrUsage},
		{"removemute usage", "removemute", []string{"Usage: removemute <steamid64>"}, ErrUsage},
		{"bad address", "addip 1.x", []string{"Bad filter address: 1.x"}, nil},
		{"remove missing", "removeip 10.0.0.9", []string{"Didn't find 10.0.0.9."}, nil},
		{"remove bad address", "removeip abc", []string{"Bad filter address: abc", "Didn't find abc."}, nil},
		{"zero id is silent", "ban abc", nil, nil},
		{"unban missing", "removeban 99", []string{"Didn't find 99."}, nil},
		{"empty list", "listip", []string{"Filter list:"}, nil},
		{"ban infinite minutes", "ban 111 inf", []string{"Usage: ban <steamid64> [time-mins]"}, ErrUsage},
		{"ban huge minutes", "ban 111 1e20", []string{"Usage: ban <steamid64> [time-mins]"}, ErrUsage},
		{"mute huge minutes", "mute 333 0 1e16", []string{"Usage: mute <steamid64> <shadow 0/1> [time-mins]"}, ErrUsage},
		{"addip huge minutes", "addip 10.1.2.3 1e300", []string{"Usage: addip <ip-mask> [time-mins]"}, ErrUsage},
		{"removeban nan threshold", "removeban 111 nan", []string{"Usage: removeban <steamid64>"}, ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _, _ := newTestConsole()
			got, err := c.Exec(context.Background(), tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected output %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConsole_ListIP(t *testing.T) {
	c, _, _, _ := newTestConsole()
	ctx := context.Background()

	for _, line := range []string{"addip 192.246.40", "ban 76561198000000001 30", "mute 5 1"} {
		if _, err := c.Exec(ctx, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	got, err := c.Exec(ctx, "listip")
	if err != nil {
		t.Fatalf("listip: %v", err)
	}
	want := []string{
		"Filter list:",
		"192.246. 40.  0",
		"76561198000000001 30.00",
		"5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestConsole_RemoveBanPrintsPerEntry(t *testing.T) {
	c, svc, _, _ := newTestConsole()
	ctx := context.Background()

	_, _ = c.Exec(ctx, "ban 7")
	_, _ = c.Exec(ctx, "ban 7 10")
	got, _ := c.Exec(ctx, "removeban 7")
	if !reflect.DeepEqual(got, []string{"Removed.", "Removed."}) {
		t.Errorf("Unexpected output %q", got)
	}
	if svc.IsIdentityFiltered(7, true, false, false) {
		t.Error("Expected all bans on 7 to be gone")
	}
}

func TestConsole_SetFilterBan(t *testing.T) {
	c, svc, _, _ := newTestConsole()
	ctx := context.Background()

	if _, err := c.Exec(ctx, "set filterban 0"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if svc.FilterBan() {
		t.Error("Expected filterban to be off")
	}
	got, _ := c.Exec(ctx, "set filterban")
	if !reflect.DeepEqual(got, []string{`"filterban" is "0"`}) {
		t.Errorf("Unexpected output %q", got)
	}
	if _, err := c.Exec(ctx, "set hostname x"); !errors.Is(err, ErrUsage) {
		t.Errorf("Expected ErrUsage for unknown variable, got %v", err)
	}
}

func TestConsole_RoundTrip(t *testing.T) {
	c, svc, repo, clock := newTestConsole()
	ctx := context.Background()

	for _, line := range []string{
		"set filterban 0",
		"addip 10.1 60",
		"ban 76561198000000001",
		"mute 76561198000000002 1 15",
		"addip 172.16.0.5",
	} {
		if _, err := c.Exec(ctx, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	clock.Advance(30 * time.Minute)
	if err := svc.WriteIP(ctx); err != nil {
		t.Fatalf("WriteIP: %v", err)
	}
	saved := append([]string(nil), repo.lines...)
	wantSaved := []string{
		"set filterban 0",
		"addip 10.1.0.0 30.00",
		"ban 76561198000000001",
		"addip 172.16.0.5",
	}
	if !reflect.DeepEqual(saved, wantSaved) {
		t.Fatalf("Expected saved %q, got %q", wantSaved, saved)
	}

	fresh := admission.NewService(repo, filter.NewManualClock(0))
	if err := fresh.Reload(ctx, New(fresh)); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := fresh.Serialize(); !reflect.DeepEqual(got, saved) {
		t.Errorf("Expected reload to reproduce %q, got %q", saved, got)
	}
	if !reflect.DeepEqual(repo.lines, saved) {
		t.Error("Expected reload not to rewrite the script")
	}
}

func TestConsole_ReplaySkipsBadLines(t *testing.T) {
	c, svc, _, _ := newTestConsole()
	err := c.Replay(context.Background(), []string{"bogus", "addip", "ban 9"})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !svc.IsIdentityFiltered(9, true, false, false) {
		t.Error("Expected lines after bad ones to run")
	}
}

func TestConsole_Serve(t *testing.T) {
	c, svc, _, _ := newTestConsole()
	in := strings.NewReader("addip 10.0.0.1\nremoveip 10.0.0.2\nlistip\n")
	var out bytes.Buffer

	if err := c.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	want := "Didn't find 10.0.0.2.\nFilter list:\n 10.  0.  0.  1\n"
	if out.String() != want {
		t.Errorf("Expected output %q, got %q", want, out.String())
	}
	if !svc.IsAddressBanned("10.0.0.1") {
		t.Error("Expected 10.0.0.1 to be banned")
	}
}

func TestConsole_ServeListsCommandsAfterUnknown(t *testing.T) {
	c, _, _, _ := newTestConsole()
	var out bytes.Buffer

	if err := c.Serve(context.Background(), strings.NewReader("kick 3\n"), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	want := "Unknown command \"kick\"\n" +
		"Commands: addip ban listip mute removeban removeip removemute set writeip\n"
	if out.String() != want {
		t.Errorf("Expected output %q, got %q", want, out.String())
	}
}

func TestConsole_OutOfRangeMinutesLeaveListUntouched(t *testing.T) {
	c, svc, repo, _ := newTestConsole()
	ctx := context.Background()

	for _, line := range []string{"ban 111 1e20", "ban 222 inf", "addip 10.1.2.3 1e300", "mute 333 0 1e16"} {
		if _, err := c.Exec(ctx, line); !errors.Is(err, ErrUsage) {
			t.Errorf("%s: expected ErrUsage, got %v", line, err)
		}
	}
	if len(svc.ListIP()) != 0 {
		t.Errorf("Expected empty list, got %v", svc.ListIP())
	}
	if repo.lines != nil {
		t.Errorf("Expected nothing written, got %q", repo.lines)
	}

	if _, err := c.Exec(ctx, "ban 111 1000000"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !svc.IsIdentityFiltered(111, true, false, false) {
		t.Error("Expected long ban to filter 111")
	}
}
