package cacheentry

import "strings"

// Header is a single response header as a name-value pair. Unlike
// http.Header, a slice of headers keeps the original field order of the
// response, and the same name may appear any number of times.
type Header struct {
	Name  string
	Value string
}

// headerGroup holds the response headers of an entry in their original
// order and answers case-insensitive lookups by name.
type headerGroup struct {
	headers []Header
}

func newHeaderGroup(headers []Header) headerGroup {
	group := headerGroup{headers: make([]Header, len(headers))}
	copy(group.headers, headers)
	return group
}

// all returns a copy of every header in original order.
func (g headerGroup) all() []Header {
	headers := make([]Header, len(g.headers))
	copy(headers, g.headers)
	return headers
}

// first returns the first header matching name, if any.
func (g headerGroup) first(name string) (Header, bool) {
	for _, header := range g.headers {
		if strings.EqualFold(header.Name, name) {
			return header, true
		}
	}
	return Header{}, false
}

// named returns every header matching name in original order.
func (g headerGroup) named(name string) []Header {
	headers := make([]Header, 0)
	for _, header := range g.headers {
		if strings.EqualFold(header.Name, name) {
			headers = append(headers, header)
		}
	}
	return headers
}
