package filter

import "fmt"

// Store is a fixed-capacity list of filter entries. Entries past Len are not
// live. Order is insertion order, except that inserts reuse slots freed by
// expiry or tombstoning before appending. Removal shifts later entries left,
// so scans always see survivors in their original relative order.
//
// A Store is not safe for concurrent use; the owner serializes access.
type Store struct {
	entries [MaxEntries]Entry
	count   int
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Len returns the number of live slots, including expired and tombstoned ones.
func (s *Store) Len() int { return s.count }

// At returns the entry in slot i. It panics if i is out of range.
func (s *Store) At(i int) Entry {
	if i < 0 || i >= s.count {
		panic(fmt.Sprintf("filter: slot %d out of range [0,%d)", i, s.count))
	}
	return s.entries[i]
}

// FindFreeSlot returns the first slot holding a tombstone or an expired entry.
func (s *Store) FindFreeSlot(now Millis) (int, bool) {
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if e.Tombstoned() || e.Expired(now) {
			return i, true
		}
	}
	return 0, false
}

// Insert stores e in the first free slot, or appends it. The slot is fully
// overwritten so no flags survive from a previous occupant.
func (s *Store) Insert(e Entry, now Millis) error {
	i, ok := s.FindFreeSlot(now)
	if !ok {
		if s.count == MaxEntries {
			return ErrFull
		}
		i = s.count
		s.count++
	}
	s.entries[i] = e
	return nil
}

func expiryFor(e Entry, minutes *float64, now Millis) Entry {
	if minutes == nil {
		return e
	}
	return e.WithExpiry(addMillis(now, MinutesToMillis(*minutes)))
}

// AddAddress parses pattern and inserts an address entry. When the pattern
// does not parse, a tombstone is inserted in its place so the slot can be
// reclaimed later, and the parse error is returned wrapped in
// ErrInvalidPattern. ErrFull is returned when no slot is available.
// Minutes outside CheckMinutes leave the store untouched.
func (s *Store) AddAddress(pattern string, minutes *float64, now Millis) error {
	if minutes != nil {
		if err := CheckMinutes(*minutes); err != nil {
			return err
		}
	}
	mask, compare, err := ParsePattern(pattern)
	if err != nil {
		if insErr := s.Insert(Entry{Kind: KindAddress, Compare: tombstone}, now); insErr != nil {
			return insErr
		}
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return s.Insert(expiryFor(NewAddressEntry(mask, compare), minutes, now), now)
}

// AddIdentity inserts a ban (mute=false) or mute for id. A zero id is
// rejected without touching the store, as are minutes outside CheckMinutes.
func (s *Store) AddIdentity(id uint64, mute, shadow bool, minutes *float64, now Millis) error {
	if id == 0 {
		return ErrZeroIdentity
	}
	if minutes != nil {
		if err := CheckMinutes(*minutes); err != nil {
			return err
		}
	}
	return s.Insert(expiryFor(NewIdentityEntry(id, mute, shadow), minutes, now), now)
}

func (s *Store) removeAt(i int) {
	copy(s.entries[i:s.count-1], s.entries[i+1:s.count])
	s.count--
	s.entries[s.count] = Entry{}
}

// RemoveAddress removes the first non-tombstone address entry whose mask and
// compare equal the parsed pattern. A pattern only removes an entry added
// with the same spelling: removing one host does not remove its subnet.
// An unparsable pattern matches nothing; its error is both ErrNotFound and
// ErrInvalidPattern.
func (s *Store) RemoveAddress(pattern string) error {
	mask, compare, err := ParsePattern(pattern)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrNotFound, ErrInvalidPattern, err)
	}
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if e.Kind != KindAddress || e.Tombstoned() {
			continue
		}
		if e.Mask == mask && e.Compare == compare {
			s.removeAt(i)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveIdentity removes every identity entry for id with the given mute
// flag and returns how many were removed. With a threshold, permanent entries
// and entries with more than threshold minutes left are kept, so a short
// unban request can never cut a longer standing one.
func (s *Store) RemoveIdentity(id uint64, mute bool, threshold *float64, now Millis) int {
	removed := 0
	for i := 0; i < s.count; {
		e := &s.entries[i]
		if e.Kind != KindIdentity || e.ID != id || e.Mute != mute {
			i++
			continue
		}
		if threshold != nil {
			left, timed := e.RemainingMinutes(now)
			if !timed || left > *threshold {
				i++
				continue
			}
		}
		s.removeAt(i)
		removed++
	}
	return removed
}

// ResetTimeouts makes every slot permanent. It runs right before a saved
// script is replayed so replayed commands compute expiries from the current
// clock.
func (s *Store) ResetTimeouts() {
	for i := range s.entries {
		s.entries[i].Expiry = 0
		s.entries[i].HasExpiry = false
	}
}

// Truncate drops every entry.
func (s *Store) Truncate() {
	for i := 0; i < s.count; i++ {
		s.entries[i] = Entry{}
	}
	s.count = 0
}

// MatchesAddress reports whether addr, as presented by a connecting peer,
// matches any live address entry.
func (s *Store) MatchesAddress(addr string, now Millis) bool {
	candidate := ParseCandidate(addr)
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if e.Kind != KindAddress || e.Expired(now) {
			continue
		}
		if MatchAddress(candidate, e.Mask, e.Compare) {
			return true
		}
	}
	return false
}

// Listing is a live entry as shown to an operator.
type Listing struct {
	Slot  int
	Entry Entry
	// Remaining is the number of minutes left; nil for permanent entries.
	Remaining *float64
}

// List returns live, non-expired, non-tombstone entries in slot order.
func (s *Store) List(now Millis) []Listing {
	out := make([]Listing, 0, s.count)
	for i := 0; i < s.count; i++ {
		e := s.entries[i]
		if e.Expired(now) || e.Tombstoned() {
			continue
		}
		l := Listing{Slot: i, Entry: e}
		if left, ok := e.RemainingMinutes(now); ok {
			l.Remaining = &left
		}
		out = append(out, l)
	}
	return out
}
