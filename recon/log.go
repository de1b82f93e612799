package recon

import "fmt"

// Log is the ordered diagnostic trail produced alongside every
// reconciliation pass. It is append-only and returned verbatim to the
// caller; operators read it to audit why rows were accepted, merged, or
// dropped. A nil *Log is safe to write to and records nothing.
type Log struct {
	lines []string
}

// Printf appends one formatted line.
func (l *Log) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns the accumulated lines in append order.
func (l *Log) Lines() []string {
	if l == nil {
		return nil
	}
	return l.lines
}

// Len returns the number of lines recorded so far.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lines)
}
