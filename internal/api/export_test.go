package api

// TrackedRenders reports how many render trackers the server still holds.
func (s *Server) TrackedRenders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}
