package supervisor

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
)

// Supervisor forces a timeout on sessions that see no move before their deadline.
type Supervisor struct {
	logger *slog.Logger
	clock  clock.Clock
}

func New(logger *slog.Logger, clk clock.Clock) *Supervisor {
	return &Supervisor{
		logger: logger.With("component", "supervisor"),
		clock:  clk,
	}
}

func (that *Supervisor) Now() time.Time {
	return that.clock.Now()
}

// Watch - (re)arms the inactivity deadline of a session. When it elapses first, the session
// is finished with a timeout and onExpire receives the outcome. Returns false if the session
// already finished.
func (that *Supervisor) Watch(s *session.Session, timeout time.Duration, onExpire func(outcome *entity.Outcome)) bool {
	log := that.logger.With("method", "Watch", "session", s.Key)

	deadline := that.clock.Now().Add(timeout)

	armed := s.Arm(deadline, func(gen uint64) session.Timer {
		return that.clock.AfterFunc(timeout, func() {
			outcome, ok := s.Expire(gen, that.clock.Now())
			if !ok {
				return
			}

			log.Info("session timed out", "deadline", deadline)
			onExpire(outcome)
		})
	})

	if armed {
		log.Debug("deadline armed", "deadline", deadline)
	}

	return armed
}
