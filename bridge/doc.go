// Package bridge attaches to a running IDE host through its automation
// interface and reads the host's breakpoint set.
//
// The flow is always the same:
//
//	s, err := bridge.Attach(automation, "VisualStudio.DTE.16.0")
//	if err != nil {
//		// errors.Is(err, bridge.ErrNotFound) / bridge.ErrHostUnavailable
//	}
//	defer s.Release()
//
//	coll, n, err := bridge.Enumerate(s)
//	for i := 0; i < n; i++ {
//		rec, err := bridge.ResolveAt(coll, i)
//		...
//	}
//
// Indices are zero-based here. The host addresses its elements by a 1-based
// ordinal and the translation happens only in this package.
//
// The count returned by Enumerate is a snapshot. The host may change its
// breakpoints between Enumerate and ResolveAt, so ResolveAt can report
// ErrIndexOutOfRange for an index that was valid at enumeration time.
//
// Sessions and collections are not safe for concurrent use.
package bridge
