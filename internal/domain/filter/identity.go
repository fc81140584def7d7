package filter

func (e *Entry) liveIdentity(id uint64, now Millis) bool {
	return e.Kind == KindIdentity && e.ID == id && !e.Expired(now)
}

// MatchesForBan reports whether id has a live, unexpired ban.
func (s *Store) MatchesForBan(id uint64, now Millis) bool {
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if e.liveIdentity(id, now) && !e.Mute {
			return true
		}
	}
	return false
}

// MatchesForMute reports whether id has a live mute whose shadow flag equals
// wantShadow. A mute with the other shadow flag does not end the scan, so a
// visible mute and a shadow mute for the same id can coexist.
func (s *Store) MatchesForMute(id uint64, now Millis, wantShadow bool) bool {
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if e.liveIdentity(id, now) && e.Mute && e.ShadowMute == wantShadow {
			return true
		}
	}
	return false
}

// IdentityFiltered answers ban and mute queries in a single ordered scan.
func (s *Store) IdentityFiltered(id uint64, now Millis, wantBan, wantMute, wantShadow bool) bool {
	for i := 0; i < s.count; i++ {
		e := &s.entries[i]
		if !e.liveIdentity(id, now) {
			continue
		}
		if wantBan && !e.Mute {
			return true
		}
		if wantMute && e.Mute && e.ShadowMute == wantShadow {
			return true
		}
	}
	return false
}
