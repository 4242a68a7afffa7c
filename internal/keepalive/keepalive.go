package keepalive

import (
	"context"
	"log"
	"time"
)

// Pinger keeps the backend's free-tier host awake by hitting its health
// endpoint on a fixed interval. Failures are logged and otherwise
// ignored; this is purely best-effort.
type Pinger struct {
	health      healthChecker
	interval    time.Duration
	pingTimeout time.Duration
}

type healthChecker interface {
	Health(ctx context.Context) error
}

func NewPinger(health healthChecker) *Pinger {
	return &Pinger{
		health:      health,
		interval:    60 * time.Second,
		pingTimeout: 5 * time.Second,
	}
}

// Run pings once immediately, then on every tick until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	log.Printf("keep-alive started, pinging every %s", p.interval)

	p.ping(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.ping(ctx)
		case <-ctx.Done():
			log.Println("keep-alive stopped")
			return
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout)
	defer cancel()

	if err := p.health.Health(pingCtx); err != nil {
		log.Printf("keep-alive ping failed: %v", err)
	}
}
