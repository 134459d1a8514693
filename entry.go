package cacheentry

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidArgument is returned when construction is attempted without
	// one of the required arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedOperation is returned when an accessor is not available
	// for the form the entry was constructed with.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// variantForm tells which variant representation an entry carries.
type variantForm int

const (
	variantFormNone variantForm = iota
	variantFormSet
	variantFormMap
)

// Entry is a single cached HTTP response together with the metadata needed
// to manage it: the request and response times (used for age calculation),
// the origin status line and headers, a handle to the stored response body,
// and the cache keys of any negotiated variants.
//
// An entry is immutable once constructed. All accessors return copies, so
// one entry may be read concurrently without synchronization. The entry
// never releases its resource - release timing is a storage layer decision.
type Entry struct {
	requestDate  time.Time
	responseDate time.Time
	status       StatusLine
	headers      headerGroup
	resource     Resource
	form         variantForm
	variantSet   map[string]struct{}
	variantMap   map[string]string
}

// newEntry validates the required fields and copies the supplied containers.
// Exactly one of set and variants should be non-nil; when both are nil the
// entry carries no variant information and the variant accessors fail.
func newEntry(
	requestDate time.Time,
	responseDate time.Time,
	status StatusLine,
	headers []Header,
	resource Resource,
	set map[string]struct{},
	variants map[string]string,
) (*Entry, error) {
	if requestDate.IsZero() {
		return nil, fmt.Errorf("%w: request date may not be zero", ErrInvalidArgument)
	}
	if responseDate.IsZero() {
		return nil, fmt.Errorf("%w: response date may not be zero", ErrInvalidArgument)
	}
	if status == (StatusLine{}) {
		return nil, fmt.Errorf("%w: status line may not be empty", ErrInvalidArgument)
	}
	if headers == nil {
		return nil, fmt.Errorf("%w: headers may not be nil", ErrInvalidArgument)
	}
	if resource == nil {
		return nil, fmt.Errorf("%w: resource may not be nil", ErrInvalidArgument)
	}
	e := &Entry{
		requestDate:  requestDate,
		responseDate: responseDate,
		status:       status,
		headers:      newHeaderGroup(headers),
		resource:     resource,
	}
	switch {
	case set != nil:
		e.form = variantFormSet
		e.variantSet = make(map[string]struct{}, len(set))
		for key := range set {
			e.variantSet[key] = struct{}{}
		}
	case variants != nil:
		e.form = variantFormMap
		e.variantMap = make(map[string]string, len(variants))
		for key, canonical := range variants {
			e.variantMap[key] = canonical
		}
	}
	return e, nil
}

// New creates an entry without variant metadata. The entry holds an empty
// variant map, so both VariantMap and VariantURIs succeed and report empty.
//
// requestDate and responseDate are the clock values around the origin
// request that produced the response. The headers are copied, so the
// caller's slice may be reused afterwards. The resource is stored as-is.
func New(
	requestDate time.Time,
	responseDate time.Time,
	status StatusLine,
	headers []Header,
	resource Resource,
) (*Entry, error) {
	return newEntry(requestDate, responseDate, status, headers, resource, nil, map[string]string{})
}

// NewWithVariantMap creates an entry with the given variant map. The map
// keys are variant cache keys and the values the canonical cache keys they
// resolve to; normally each key maps to itself. The map is copied.
func NewWithVariantMap(
	requestDate time.Time,
	responseDate time.Time,
	status StatusLine,
	headers []Header,
	resource Resource,
	variants map[string]string,
) (*Entry, error) {
	return newEntry(requestDate, responseDate, status, headers, resource, nil, variants)
}

// NewWithVariantSet creates an entry with a plain set of variant cache keys.
// The set is copied. Entries built this way have no variant map, and
// VariantMap on them fails with ErrUnsupportedOperation.
//
// Deprecated: use NewWithVariantMap instead.
func NewWithVariantSet(
	requestDate time.Time,
	responseDate time.Time,
	status StatusLine,
	headers []Header,
	resource Resource,
	variants map[string]struct{},
) (*Entry, error) {
	return newEntry(requestDate, responseDate, status, headers, resource, variants, nil)
}

// RequestDate returns the time the original request was issued.
func (e *Entry) RequestDate() time.Time {
	return e.requestDate
}

// ResponseDate returns the time the origin response was received.
func (e *Entry) ResponseDate() time.Time {
	return e.responseDate
}

// StatusLine returns the status line of the origin response.
func (e *Entry) StatusLine() StatusLine {
	return e.status
}

// ProtocolVersion returns the protocol version of the status line.
func (e *Entry) ProtocolVersion() string {
	return e.status.Proto
}

// StatusCode returns the numeric status code of the status line.
func (e *Entry) StatusCode() int {
	return e.status.Code
}

// ReasonPhrase returns the reason phrase of the status line.
func (e *Entry) ReasonPhrase() string {
	return e.status.Reason
}

// Headers returns a copy of all response headers in their original order.
func (e *Entry) Headers() []Header {
	return e.headers.all()
}

// FirstHeader returns the first header with the given name.
// The name match is case-insensitive.
func (e *Entry) FirstHeader(name string) (Header, bool) {
	return e.headers.first(name)
}

// HeadersNamed returns all headers with the given name in their original
// order. The name match is case-insensitive. An absent name yields an
// empty slice.
func (e *Entry) HeadersNamed(name string) []Header {
	return e.headers.named(name)
}

// Resource returns the handle to the stored response body.
// It is never nil for a constructed entry.
func (e *Entry) Resource() Resource {
	return e.resource
}

// HasVariants reports whether the response carries a Vary header, i.e.
// whether content negotiation applies to the cached resource. This is
// independent of the variant metadata: an entry may report HasVariants
// while its variant map is still empty, and callers must check the two
// signals separately.
func (e *Entry) HasVariants() bool {
	_, ok := e.headers.first("Vary")
	return ok
}

// VariantURIs returns the set of canonical variant cache keys: the value
// set of the variant map, or the raw set for entries built with
// NewWithVariantSet. The returned set is a copy. It fails only for entries
// carrying no variant information at all.
//
// Deprecated: use VariantMap instead.
func (e *Entry) VariantURIs() (map[string]struct{}, error) {
	switch e.form {
	case variantFormMap:
		uris := make(map[string]struct{}, len(e.variantMap))
		for _, canonical := range e.variantMap {
			uris[canonical] = struct{}{}
		}
		return uris, nil
	case variantFormSet:
		uris := make(map[string]struct{}, len(e.variantSet))
		for key := range e.variantSet {
			uris[key] = struct{}{}
		}
		return uris, nil
	}
	return nil, fmt.Errorf("%w: entry has no variant information", ErrUnsupportedOperation)
}

// VariantMap returns a copy of the mapping from variant cache key to
// canonical cache key. It fails with ErrUnsupportedOperation if the entry
// was built with the deprecated variant set form, since no map exists.
func (e *Entry) VariantMap() (map[string]string, error) {
	if e.form != variantFormMap {
		return nil, fmt.Errorf("%w: variant maps not supported if constructed with deprecated variant set", ErrUnsupportedOperation)
	}
	variants := make(map[string]string, len(e.variantMap))
	for key, canonical := range e.variantMap {
		variants[key] = canonical
	}
	return variants, nil
}

// String returns a short human-readable summary for diagnostics.
func (e *Entry) String() string {
	return fmt.Sprintf("[request date=%s; response date=%s; status=%s]",
		e.requestDate.Format(time.RFC3339), e.responseDate.Format(time.RFC3339), e.status)
}
