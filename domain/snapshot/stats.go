package snapshot

// Stats summarises poll loop behaviour for instrumentation.
type Stats struct {
	Requests    uint64
	Frames      uint64
	Failures    uint64
	Discarded   uint64
	Bytes       uint64
	Outstanding int64
}

// Stats is safe to call from any goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:    e.requests.Load(),
		Frames:      e.frames.Load(),
		Failures:    e.failures.Load(),
		Discarded:   e.discarded.Load(),
		Bytes:       e.bytes.Load(),
		Outstanding: e.registry.Outstanding(),
	}
}
