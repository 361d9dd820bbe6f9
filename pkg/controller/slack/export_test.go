package slack

import "time"

// SetClock overrides the clock used for timestamp checks
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}
