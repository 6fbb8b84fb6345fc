package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker; zero disables tripping.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
	// IsSuccessful reports whether an error still counts as a success, e.g.
	// a rejection caused by the request itself. Nil counts only nil errors.
	IsSuccessful func(err error) bool
	Logger       *slog.Logger
}

// New returns a breaker that opens after a run of consecutive failures and
// lets a single trial request through once OpenTimeout has passed.
func New[T any](s Settings) *gobreaker.CircuitBreaker[T] {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:         s.Name,
		MaxRequests:  1,
		Timeout:      s.OpenTimeout,
		IsSuccessful: s.IsSuccessful,
		ReadyToTrip:  func(counts gobreaker.Counts) bool {
			return s.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
