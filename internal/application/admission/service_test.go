package admission

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"gamefilter/internal/domain/filter"
)

type fakeRepo struct {
	mu      sync.Mutex
	lines   []string
	saves   int
	saveErr error
}

func (r *fakeRepo) Load(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...), nil
}

func (r *fakeRepo) Save(_ context.Context, lines []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.lines = append([]string(nil), lines...)
	return nil
}

type recordingNotifier struct {
	changes []Change
}

func (n *recordingNotifier) NotifyFilterChange(c Change) { n.changes = append(n.changes, c) }

// scriptReplayer feeds lines back into the service the way the console does,
// without depending on the console package.
type scriptReplayer struct {
	replayed []string
}

func (r *scriptReplayer) Replay(ctx context.Context, lines []string) error {
	r.replayed = append(r.replayed, lines...)
	return nil
}

func minutes(m float64) *float64 { return &m }

func newTestService() (*Service, *fakeRepo, *filter.ManualClock) {
	repo := &fakeRepo{}
	clock := filter.NewManualClock(0)
	return NewService(repo, clock), repo, clock
}

func TestService_AddIPPersists(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.AddIP(ctx, "192.246.40", nil); err != nil {
		t.Fatalf("AddIP: %v", err)
	}
	want := []string{"set filterban 1", "addip 192.246.40.0"}
	if !reflect.DeepEqual(repo.lines, want) {
		t.Errorf("Expected saved script %v, got %v", want, repo.lines)
	}
	if !svc.IsAddressBanned("192.246.40.17") {
		t.Error("Expected 192.246.40.17 to be banned")
	}
	if svc.IsAddressBanned("192.246.41.1") {
		t.Error("Expected 192.246.41.1 to be admitted")
	}
}

func TestService_InvalidPatternStillPersists(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.AddIP(context.Background(), "abc", nil)
	if !errors.Is(err, filter.ErrInvalidPattern) {
		t.Fatalf("Expected ErrInvalidPattern, got %v", err)
	}
	if repo.saves != 1 {
		t.Errorf("Expected one save, got %d", repo.saves)
	}
	if len(svc.ListIP()) != 0 {
		t.Error("tombstone must not be listed")
	}
}

func TestService_FilterBanOff(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.AddIP(ctx, "10.0.0.1", nil); err != nil {
		t.Fatalf("AddIP: %v", err)
	}
	if err := svc.SetFilterBan(ctx, false); err != nil {
		t.Fatalf("SetFilterBan: %v", err)
	}
	if svc.IsAddressBanned("10.0.0.1") {
		t.Error("Expected no address bans while filterban is off")
	}
	if repo.lines[0] != "set filterban 0" {
		t.Errorf("Expected first line to record filterban 0, got %q", repo.lines[0])
	}
}

func TestService_PersistFailureKeepsChange(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.saveErr = errors.New("disk full")

	err := svc.Ban(context.Background(), 76561198000000001, nil)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Expected ErrPersist, got %v", err)
	}
	if !svc.IsIdentityFiltered(76561198000000001, true, false, false) {
		t.Error("Expected ban to stay in memory after a failed write")
	}
}

func TestService_ZeroIdentity(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.Ban(ctx, 0, nil); !errors.Is(err, filter.ErrZeroIdentity) {
		t.Errorf("Expected ErrZeroIdentity from Ban, got %v", err)
	}
	if _, err := svc.RemoveMute(ctx, 0, nil); !errors.Is(err, filter.ErrZeroIdentity) {
		t.Errorf("Expected ErrZeroIdentity from RemoveMute, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("Expected no saves, got %d", repo.saves)
	}
}

func TestService_OutOfRangeMinutes(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.AddIP(ctx, "10.1.2.3", minutes(1e300)); !errors.Is(err, filter.ErrInvalidMinutes) {
		t.Errorf("Expected ErrInvalidMinutes from AddIP, got %v", err)
	}
	if err := svc.Ban(ctx, 111, minutes(1e20)); !errors.Is(err, filter.ErrInvalidMinutes) {
		t.Errorf("Expected ErrInvalidMinutes from Ban, got %v", err)
	}
	if err := svc.Ban(ctx, 111, nil); err != nil {
		t.Fatalf("ban: %v", err)
	}
	saves := repo.saves
	if _, err := svc.RemoveBan(ctx, 111, minutes(1e20)); !errors.Is(err, filter.ErrInvalidMinutes) {
		t.Errorf("Expected ErrInvalidMinutes from RemoveBan, got %v", err)
	}
	if !svc.IsIdentityFiltered(111, true, false, false) {
		t.Error("Expected ban to survive rejected removal")
	}
	if svc.IsAddressBanned("10.1.2.3") {
		t.Error("rejected addip must not ban")
	}
	if repo.saves != saves {
		t.Errorf("Expected no saves for rejected commands, got %d more", repo.saves-saves)
	}
}

func TestService_MuteAndRemove(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()
	const id = 42

	if err := svc.Mute(ctx, id, true, minutes(10)); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if err := svc.Mute(ctx, id, false, nil); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if !svc.IsIdentityFiltered(id, false, true, true) {
		t.Error("Expected shadow mute to match")
	}
	if !svc.IsIdentityFiltered(id, false, true, false) {
		t.Error("Expected visible mute to match")
	}
	if svc.IsIdentityFiltered(id, true, false, false) {
		t.Error("mutes must not count as bans")
	}

	clock.Advance(5 * time.Minute)
	n, err := svc.RemoveMute(ctx, id, minutes(6))
	if err != nil {
		t.Fatalf("RemoveMute: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected threshold to keep the permanent mute, removed %d", n)
	}
	if !svc.IsIdentityFiltered(id, false, true, false) {
		t.Error("Expected permanent mute to survive")
	}

	if _, err := svc.RemoveBan(ctx, id, nil); !errors.Is(err, filter.ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing a ban that was never added, got %v", err)
	}
}

func TestService_Notifier(t *testing.T) {
	svc, _, _ := newTestService()
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	ctx := context.Background()

	_ = svc.AddIP(ctx, "10.0.0.1", nil)
	_ = svc.RemoveIP(ctx, "10.0.0.1")
	_ = svc.RemoveIP(ctx, "10.0.0.1")

	if len(n.changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(n.changes))
	}
	if n.changes[0].Command != "addip" || n.changes[1].Command != "removeip" {
		t.Errorf("Unexpected change commands: %+v", n.changes)
	}
	if n.changes[0].ID == "" || n.changes[0].ID == n.changes[1].ID {
		t.Error("Expected distinct change IDs")
	}
}

func TestService_ReloadClearsAndReplays(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if err := svc.AddIP(ctx, "10.0.0.1", nil); err != nil {
		t.Fatalf("AddIP: %v", err)
	}
	repo.lines = []string{"set filterban 1", "ban 7"}
	saves := repo.saves

	r := &scriptReplayer{}
	if err := svc.Reload(ctx, r); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !reflect.DeepEqual(r.replayed, []string{"set filterban 1", "ban 7"}) {
		t.Errorf("Unexpected replayed lines: %v", r.replayed)
	}
	if svc.IsAddressBanned("10.0.0.1") {
		t.Error("Expected reload to clear the old list")
	}
	if repo.saves != saves {
		t.Error("Expected reload not to write")
	}
}

func TestService_ReplayDoesNotPersist(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.lines = []string{"ban 7"}
	r := replayFunc(func(ctx context.Context, lines []string) error {
		return svc.Ban(ctx, 7, nil)
	})
	if err := svc.Reload(context.Background(), r); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("Expected no saves during replay, got %d", repo.saves)
	}
	if !svc.IsIdentityFiltered(7, true, false, false) {
		t.Error("Expected replayed ban to be active")
	}
}

func TestService_MutationDuringReplayStillPersists(t *testing.T) {
	svc, repo, _ := newTestService()
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	repo.lines = []string{"ban 7"}

	r := replayFunc(func(ctx context.Context, lines []string) error {
		if err := svc.Ban(ctx, 7, nil); err != nil {
			return err
		}
		// an admin request arriving while the script is replayed
		return svc.Ban(context.Background(), 8, nil)
	})
	if err := svc.Reload(context.Background(), r); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if repo.saves != 1 {
		t.Errorf("Expected one save for the concurrent ban, got %d", repo.saves)
	}
	if len(n.changes) != 1 || n.changes[0].Target != "8" {
		t.Errorf("Expected one change for 8, got %+v", n.changes)
	}
	if !reflect.DeepEqual(repo.lines, []string{"set filterban 1", "ban 7", "ban 8"}) {
		t.Errorf("Unexpected saved script: %q", repo.lines)
	}
}

type replayFunc func(ctx context.Context, lines []string) error

func (f replayFunc) Replay(ctx context.Context, lines []string) error { return f(ctx, lines) }
