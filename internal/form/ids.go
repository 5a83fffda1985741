package form

import "time"

// idSource hands out clock-derived ids (unix milliseconds) that are strictly
// increasing even when several are requested within one millisecond.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

func (s *idSource) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
