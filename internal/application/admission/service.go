package admission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gamefilter/internal/domain/filter"
	"gamefilter/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrPersist marks a command that changed the list in memory but could not
// write it out. The in-memory change stands.
var ErrPersist = errors.New("couldn't write filter list")

// Change describes one mutation of the filter list, pushed to listeners.
type Change struct {
	ID      string    `json:"id"`
	Command string    `json:"command"`
	Target  string    `json:"target"`
	At      time.Time `json:"at"`
	Slots   int       `json:"slots"`
}

// ChangeNotifier is told about every successful mutation.
type ChangeNotifier interface {
	NotifyFilterChange(change Change)
}

// Replayer executes saved admin command lines against the service.
type Replayer interface {
	Replay(ctx context.Context, lines []string) error
}

type replayKey struct{}

// replaying reports whether ctx belongs to a Reload. Mutations made with it
// are neither written nor announced; other callers are unaffected.
func replaying(ctx context.Context) bool {
	on, _ := ctx.Value(replayKey{}).(bool)
	return on
}

// Service owns the filter list and the global filterban flag. Every public
// method runs under one mutex; the store itself is never shared.
type Service struct {
	mu        sync.Mutex
	store     *filter.Store
	clock     filter.Clock
	repo      filter.ScriptRepository
	filterBan bool
	notifier  ChangeNotifier
	metrics   *metrics.Filter
}

// NewService creates a service with an empty list and filterban on.
func NewService(repo filter.ScriptRepository, clock filter.Clock) *Service {
	if clock == nil {
		clock = filter.NewServerClock()
	}
	return &Service{
		store:     filter.NewStore(),
		clock:     clock,
		repo:      repo,
		filterBan: true,
	}
}

// SetNotifier sets the listener for list changes.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// SetMetrics sets the metrics sink.
func (s *Service) SetMetrics(m *metrics.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// persist writes the list and notifies listeners. It must be called with
// s.mu held. Nothing is written for commands replayed by Reload.
func (s *Service) persist(ctx context.Context, command, target string) error {
	s.metrics.SetSlots(s.store.Len())
	if replaying(ctx) {
		return nil
	}
	if s.notifier != nil {
		s.notifier.NotifyFilterChange(Change{
			ID:      uuid.New().String(),
			Command: command,
			Target:  target,
			At:      time.Now(),
			Slots:   s.store.Len(),
		})
	}
	return s.write(ctx)
}

func (s *Service) write(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	lines := filter.Serialize(s.store, s.filterBan, s.clock.Now())
	if err := s.repo.Save(ctx, lines); err != nil {
		s.metrics.ObservePersistFailure()
		log.Warn().Err(err).Msg("failed writing filter list")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	log.Debug().Int("lines", len(lines)).Msg("filter list written")
	return nil
}

// AddIP adds an address pattern, optionally expiring after minutes. An
// unparsable pattern still takes a disabled slot and returns
// filter.ErrInvalidPattern.
func (s *Service) AddIP(ctx context.Context, pattern string, minutes *float64) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveCommand("addip", err) }()

	addErr := s.store.AddAddress(pattern, minutes, s.clock.Now())
	if errors.Is(addErr, filter.ErrFull) {
		log.Warn().Str("pattern", pattern).Msg("IP filter list is full")
		return addErr
	}
	if errors.Is(addErr, filter.ErrInvalidMinutes) {
		return addErr
	}
	if addErr != nil {
		log.Warn().Err(addErr).Str("pattern", pattern).Msg("bad filter address")
	} else {
		log.Info().Str("pattern", pattern).Msg("address filter added")
	}
	if err := s.persist(ctx, "addip", pattern); err != nil {
		return errors.Join(addErr, err)
	}
	return addErr
}

// RemoveIP removes the address entry added with exactly this pattern.
func (s *Service) RemoveIP(ctx context.Context, pattern string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveCommand("removeip", err) }()

	if err := s.store.RemoveAddress(pattern); err != nil {
		return err
	}
	log.Info().Str("pattern", pattern).Msg("address filter removed")
	return s.persist(ctx, "removeip", pattern)
}

// ListIP returns live entries with their remaining minutes.
func (s *Service) ListIP() []filter.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List(s.clock.Now())
}

// WriteIP persists the current list.
func (s *Service) WriteIP(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveCommand("writeip", err) }()
	return s.write(ctx)
}

// Ban adds an identity ban. A zero id returns filter.ErrZeroIdentity and
// changes nothing.
func (s *Service) Ban(ctx context.Context, id uint64, minutes *float64) error {
	return s.addIdentity(ctx, "ban", id, false, false, minutes)
}

// Mute adds a visible or shadow mute for an identity.
func (s *Service) Mute(ctx context.Context, id uint64, shadow bool, minutes *float64) error {
	return s.addIdentity(ctx, "mute", id, true, shadow, minutes)
}

func (s *Service) addIdentity(ctx context.Context, command string, id uint64, mute, shadow bool, minutes *float64) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveCommand(command, err) }()

	if err := s.store.AddIdentity(id, mute, shadow, minutes, s.clock.Now()); err != nil {
		if errors.Is(err, filter.ErrFull) {
			log.Warn().Uint64("id", id).Msg("IP filter list is full")
		}
		return err
	}
	log.Info().Str("command", command).Uint64("id", id).Bool("shadow", mute && shadow).Msg("identity filter added")
	return s.persist(ctx, command, fmt.Sprint(id))
}

// RemoveBan removes bans for id. With a threshold, bans with more than that
// many minutes left, and permanent bans, are kept.
func (s *Service) RemoveBan(ctx context.Context, id uint64, threshold *float64) (int, error) {
	return s.removeIdentity(ctx, "removeban", id, false, threshold)
}

// RemoveMute removes mutes for id, honoring threshold like RemoveBan.
func (s *Service) RemoveMute(ctx context.Context, id uint64, threshold *float64) (int, error) {
	return s.removeIdentity(ctx, "removemute", id, true, threshold)
}

func (s *Service) removeIdentity(ctx context.Context, command string, id uint64, mute bool, threshold *float64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveCommand(command, err) }()

	if id == 0 {
		return 0, filter.ErrZeroIdentity
	}
	if threshold != nil {
		if err := filter.CheckMinutes(*threshold); err != nil {
			return 0, err
		}
	}
	n = s.store.RemoveIdentity(id, mute, threshold, s.clock.Now())
	if n == 0 {
		return 0, filter.ErrNotFound
	}
	log.Info().Str("command", command).Uint64("id", id).Int("removed", n).Msg("identity filter removed")
	return n, s.persist(ctx, command, fmt.Sprint(id))
}

// SetFilterBan turns address admission filtering on or off.
func (s *Service) SetFilterBan(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterBan = on
	log.Info().Bool("filterban", on).Msg("filterban set")
	return s.persist(ctx, "filterban", fmt.Sprint(on))
}

// FilterBan reports whether address filtering is on.
func (s *Service) FilterBan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterBan
}

// Serialize returns the list as it would be written.
func (s *Service) Serialize() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Serialize(s.store, s.filterBan, s.clock.Now())
}

// IsAddressBanned reports whether a connecting address is refused. It is
// always false while filterban is off.
func (s *Service) IsAddressBanned(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filterBan {
		s.metrics.ObserveCheck("address", false)
		return false
	}
	banned := s.store.MatchesAddress(addr, s.clock.Now())
	s.metrics.ObserveCheck("address", banned)
	return banned
}

// IsIdentityFiltered answers ban and mute checks for a player identity.
// With wantMute, only mutes whose shadow flag equals wantShadow count.
func (s *Service) IsIdentityFiltered(id uint64, wantBan, wantMute, wantShadow bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.store.IdentityFiltered(id, s.clock.Now(), wantBan, wantMute, wantShadow)
	s.metrics.ObserveCheck("identity", filtered)
	return filtered
}

// Reload empties the list, clears all timeouts and replays the saved script
// through r. Commands r issues with the context it is given are not written
// back; commands from other callers during the replay are handled as usual.
func (s *Service) Reload(ctx context.Context, r Replayer) error {
	if s.repo == nil {
		return nil
	}
	lines, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load filter list: %w", err)
	}

	s.mu.Lock()
	s.store.Truncate()
	s.store.ResetTimeouts()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.metrics.SetSlots(s.store.Len())
		s.mu.Unlock()
	}()

	if err := r.Replay(context.WithValue(ctx, replayKey{}, true), lines); err != nil {
		return fmt.Errorf("replay filter list: %w", err)
	}
	log.Info().Int("lines", len(lines)).Msg("filter list reloaded")
	return nil
}
