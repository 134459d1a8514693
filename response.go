package cacheentry

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FromResponse creates a non-variant entry from an origin response.
// The response body is read in full into a heap resource, so the body is
// consumed when this returns.
//
// requestDate and responseDate are the clock values around the origin
// request that resulted in the response. They are needed for age
// calculation by the freshness logic reading the entry.
func FromResponse(res *http.Response, requestDate, responseDate time.Time) (*Entry, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: response may not be nil", ErrInvalidArgument)
	}
	var body []byte
	if res.Body != nil {
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		res.Body.Close()
		body = b
	}
	return New(requestDate, responseDate, statusLineOf(res), headersOf(res.Header), NewHeapResource(body))
}

// statusLineOf rebuilds the status line from the response fields.
// Responses created by hand often lack Proto and Status, so both get
// sensible fallbacks.
func statusLineOf(res *http.Response) StatusLine {
	proto := res.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	reason := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}
	return StatusLine{Proto: proto, Code: res.StatusCode, Reason: reason}
}

// headersOf flattens an http.Header into an ordered header slice.
// http.Header does not remember the original field order, so names are
// emitted in sorted order; values keep their order within each name.
func headersOf(header http.Header) []Header {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	headers := make([]Header, 0, len(header))
	for _, name := range names {
		for _, value := range header[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}
	return headers
}
