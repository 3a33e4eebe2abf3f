package device

import (
	"sync"
	"sync/atomic"
)

// FallbackUserAgent is used when the host cannot report a browser user agent.
const FallbackUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 18_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148)"

// UserAgentStore holds a process-wide user agent that is written once and
// read many times. Readers see either "" or the complete value.
type UserAgentStore struct {
	once  sync.Once
	value atomic.Value
}

// Set stores ua if no value has been stored yet and reports whether it did.
// An empty ua is replaced by FallbackUserAgent.
func (s *UserAgentStore) Set(ua string) bool {
	stored := false
	s.once.Do(func() {
		if ua == "" {
			ua = FallbackUserAgent
		}
		s.value.Store(ua)
		stored = true
	})
	return stored
}

// UserAgent returns the stored value or "" before Set.
func (s *UserAgentStore) UserAgent() string {
	if v, ok := s.value.Load().(string); ok {
		return v
	}
	return ""
}
