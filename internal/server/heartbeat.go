package server

import "time"

// Logs a liveness line at every heartbeat interval until shutdown.
func (s *Server) beat() {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			stats := s.Stats()
			s.log.Info("bridge alive",
				"active", stats.Active,
				"requests", stats.Requests,
				"uptime", stats.Uptime,
			)
		}
	}
}
