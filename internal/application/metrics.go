package application

// SessionMetrics receives session lifecycle counts.
type SessionMetrics interface {
	LoginSucceeded(remember bool)
	LoginRejected(kind string)
	LoggedOut()
	SessionEvicted(reason string)
	SessionExtended()
}

// MatchMetrics receives matching request outcomes.
type MatchMetrics interface {
	MatchServed(outcome string, results int, cached bool)
}

type nopMetrics struct{}

func (nopMetrics) LoginSucceeded(bool)           {}
func (nopMetrics) LoginRejected(string)          {}
func (nopMetrics) LoggedOut()                    {}
func (nopMetrics) SessionEvicted(string)         {}
func (nopMetrics) SessionExtended()              {}
func (nopMetrics) MatchServed(string, int, bool) {}

// Eviction reasons reported to SessionMetrics.
const (
	EvictExpired   = "expired"
	EvictCorrupted = "corrupted"
)
