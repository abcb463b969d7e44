// Package tick runs the server's fixed-rate game loop: every 50 milliseconds
// it drains one tick from every live table, then flushes each connected
// user's queued outbound packets to its socket.
package tick

import (
	"log"
	"time"

	"playpalace/internal/gameframework"
	"playpalace/internal/tables"
	"playpalace/internal/users"
)

const Interval = time.Second / time.Duration(gameframework.TicksPerSecond)

// Scheduler drives the tick loop on its own goroutine, grounded on the same
// time.NewTicker pattern the transport layer uses for its keepalive pings.
type Scheduler struct {
	manager  *tables.TableManager
	registry *users.Registry

	stop chan struct{}
	done chan struct{}
}

func New(manager *tables.TableManager, registry *users.Registry) *Scheduler {
	return &Scheduler{
		manager:  manager,
		registry: registry,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking on a background goroutine. Call Stop to end it.
func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tick: recovered from panic: %v", r)
		}
	}()

	s.manager.Tick()
	s.flushUsers()
}

// flushUsers drains every connected user's deferred packet queue and writes
// it straight to the socket, preserving per-user enqueue order.
func (s *Scheduler) flushUsers() {
	for _, u := range s.registry.All() {
		conn := u.Connection()
		if conn == nil {
			continue
		}
		for _, frame := range u.DrainQueue() {
			conn.SendRaw(frame)
		}
	}
}

// Stop halts the loop and blocks until the goroutine has exited.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
