package cacheentry

import "fmt"

// StatusLine is the status line of an origin response: the protocol
// version, the numeric status code and the reason phrase.
type StatusLine struct {
	// Protocol version, e.g. "HTTP/1.1"
	Proto string
	// Numeric status code, e.g. 200
	Code int
	// Reason phrase, e.g. "OK"
	Reason string
}

func (s StatusLine) String() string {
	return fmt.Sprintf("%s %d %s", s.Proto, s.Code, s.Reason)
}
