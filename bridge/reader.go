package bridge

import (
	"errors"
	"fmt"

	"github.com/xhd2015/dte-mcp/host/common"
)

// Collection is a borrowed view of the host's breakpoints.
// It is valid only while its Session is live.
type Collection struct {
	session *Session
	host    common.Collection
	count   int
}

// Count returns the size read by Enumerate
func (c *Collection) Count() int {
	return c.count
}

// Enumerate fetches the host's breakpoint collection and reads its size once.
// A count of zero is a valid result.
func Enumerate(s *Session) (*Collection, int, error) {
	if err := s.live(); err != nil {
		return nil, 0, err
	}

	hostColl, err := s.instance.Breakpoints()
	if err != nil {
		return nil, 0, s.observe(readError(-1, err))
	}

	count, err := hostColl.Count()
	if err != nil {
		hostColl.Release()
		return nil, 0, s.observe(readError(-1, err))
	}
	if count < 0 {
		hostColl.Release()
		return nil, 0, &ReadError{Kind: Failed, Index: -1, Err: fmt.Errorf("negative count %d", count)}
	}

	coll := &Collection{
		session: s,
		host:    hostColl,
		count:   count,
	}
	if s.collections == nil {
		s.collections = make(map[*Collection]struct{})
	}
	s.collections[coll] = struct{}{}
	return coll, count, nil
}

// ResolveAt reads the breakpoint at the zero-based index.
// The host is asked every time; the count from Enumerate is not consulted.
func ResolveAt(c *Collection, index int) (BreakpointRecord, error) {
	if c == nil || c.host == nil {
		return BreakpointRecord{}, &ReadError{Kind: SessionDead, Index: index, Err: errors.New("no collection")}
	}
	s := c.session
	if err := s.live(); err != nil {
		return BreakpointRecord{}, err
	}
	if index < 0 {
		return BreakpointRecord{}, &ReadError{Kind: IndexOutOfRange, Index: index}
	}

	bp, err := c.host.Item(hostOrdinal(index))
	if err != nil {
		return BreakpointRecord{}, s.observe(readError(index, err))
	}
	defer bp.Release()

	file, err := bp.File()
	if err != nil {
		return BreakpointRecord{}, s.observe(readError(index, err))
	}
	line, err := bp.FileLine()
	if err != nil {
		return BreakpointRecord{}, s.observe(readError(index, err))
	}
	enabled, err := bp.Enabled()
	if err != nil {
		return BreakpointRecord{}, s.observe(readError(index, err))
	}

	rec := BreakpointRecord{File: file, Line: line, Enabled: enabled}
	if rec.File != "" && rec.Line < 1 {
		return BreakpointRecord{}, &ReadError{Kind: Malformed, Index: index, Err: fmt.Errorf("%s has line %d", rec.File, rec.Line)}
	}
	return rec, nil
}

// Release drops the host collection handle. It is a no-op once the
// collection or its Session was released.
func (c *Collection) Release() {
	if c == nil || c.host == nil {
		return
	}
	c.host.Release()
	c.host = nil
	delete(c.session.collections, c)
}

// ReadAll enumerates and resolves every breakpoint. Indices that vanished
// since enumeration are skipped. On any other error the records read so far
// are returned together with the error.
func ReadAll(s *Session) ([]BreakpointRecord, error) {
	coll, count, err := Enumerate(s)
	if err != nil {
		return nil, err
	}
	defer coll.Release()

	records := make([]BreakpointRecord, 0, count)
	for i := 0; i < count; i++ {
		rec, err := ResolveAt(coll, i)
		if err != nil {
			if errors.Is(err, ErrIndexOutOfRange) {
				continue
			}
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// hostOrdinal converts a zero-based index to the host's 1-based ordinal
func hostOrdinal(index int) int {
	return index + 1
}
