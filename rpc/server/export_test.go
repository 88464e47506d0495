package server

// CloseAppendOnlyLog closes the log of a running server, later appends fail
func (s *Server) CloseAppendOnlyLog() error {
	return s.aof.Close()
}
