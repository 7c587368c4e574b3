package segstore

// Close waits for in-flight appends to finish and releases the backend.
// Afterwards every operation fails with ErrClosed.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return translateError(s.engine.Close())
}
