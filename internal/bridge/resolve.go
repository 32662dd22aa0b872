package bridge

// CanonicalID derives the canonical identifier for a session: the first
// non-empty value among the id, session and name fields, in that fixed
// priority order. Empty result means the session is not addressable.
func CanonicalID(s *Session) string {
	if s == nil {
		return ""
	}
	if s.ID != "" {
		return s.ID
	}
	if s.Session != "" {
		return s.Session
	}
	return s.Name
}

// ResolveActive determines the single active session from a raw session
// list. The bridge carries no "current" marker, so the first-returned
// session is treated as active regardless of its status or whether later
// entries carry better identifiers. Returns (nil, "") for an empty list;
// a first element with no identifier fields resolves to ("", session) and
// must be treated as no usable session by callers.
func ResolveActive(sessions []Session) (*Session, string) {
	if len(sessions) == 0 {
		return nil, ""
	}
	active := &sessions[0]
	return active, CanonicalID(active)
}
