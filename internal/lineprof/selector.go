package lineprof

import "strings"

// fileRecord is the per-file state of a session. name is a copy owned by the
// record, never the host's string.
type fileRecord struct {
	name  string
	table LineTable
}

// selector resolves line events to the records of in-scope files.
type selector struct {
	pattern bool
	target  FileID
	matcher Matcher

	records  map[FileID]*fileRecord
	order    []FileID
	negative map[FileID]struct{}

	// matches counts matcher evaluations.
	matches int
}

func newSelector() *selector {
	return &selector{
		records:  make(map[FileID]*fileRecord),
		negative: make(map[FileID]struct{}),
	}
}

func newExactSelector(target FileID) *selector {
	s := newSelector()
	s.target = target
	return s
}

func newPatternSelector(m Matcher) *selector {
	s := newSelector()
	s.pattern = true
	s.matcher = m
	return s
}

// resolve returns the record for ev's file, creating it the first time an
// in-scope file is seen, or nil when the file is not profiled.
func (s *selector) resolve(ev LineEvent) *fileRecord {
	if !s.pattern {
		if ev.File != s.target {
			return nil
		}
		if r, ok := s.records[ev.File]; ok {
			return r
		}
		return s.insert(ev)
	}

	if r, ok := s.records[ev.File]; ok {
		return r
	}
	if _, ok := s.negative[ev.File]; ok {
		return nil
	}
	s.matches++
	if !s.matcher.MatchString(ev.Path) {
		s.negative[ev.File] = struct{}{}
		return nil
	}
	return s.insert(ev)
}

func (s *selector) insert(ev LineEvent) *fileRecord {
	r := &fileRecord{name: strings.Clone(ev.Path)}
	s.records[ev.File] = r
	s.order = append(s.order, ev.File)
	return r
}

// pinned lists every file id the selector currently references.
func (s *selector) pinned() []FileID {
	ids := make([]FileID, 0, len(s.records)+len(s.negative)+1)
	if !s.pattern {
		ids = append(ids, s.target)
		return ids
	}
	ids = append(ids, s.order...)
	for id := range s.negative {
		ids = append(ids, id)
	}
	return ids
}
