package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
	"time"

	cacheentry "github.com/always-cache/cache-entry"
)

// Variant form tags stored in the encoded record. The form must survive
// the round trip so that set-form entries decode back to set-form entries.
const (
	formSet uint8 = iota + 1
	formMap
)

// entryRecord is the gob wire form of an entry. The resource bytes are
// stored by value, so a decoded entry always gets a heap resource
// regardless of where the original body lived.
type entryRecord struct {
	RequestDate  time.Time
	ResponseDate time.Time
	Proto        string
	Code         int
	Reason       string
	Headers      []cacheentry.Header
	Body         []byte
	Form         uint8
	VariantSet   []string
	VariantMap   map[string]string
}

// EntryToBytes encodes an entry, including its body bytes, for storage.
// The entry's resource is read but not released.
func EntryToBytes(e *cacheentry.Entry) ([]byte, error) {
	rc, err := e.Resource().Open()
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}

	status := e.StatusLine()
	rec := entryRecord{
		RequestDate:  e.RequestDate(),
		ResponseDate: e.ResponseDate(),
		Proto:        status.Proto,
		Code:         status.Code,
		Reason:       status.Reason,
		Headers:      e.Headers(),
		Body:         body,
	}

	if variants, err := e.VariantMap(); err == nil {
		rec.Form = formMap
		rec.VariantMap = variants
	} else {
		uris, err := e.VariantURIs()
		if err != nil {
			return nil, err
		}
		rec.Form = formSet
		rec.VariantSet = make([]string, 0, len(uris))
		for key := range uris {
			rec.VariantSet = append(rec.VariantSet, key)
		}
		sort.Strings(rec.VariantSet)
	}

	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToEntry decodes an entry previously encoded with EntryToBytes.
func BytesToEntry(b []byte) (*cacheentry.Entry, error) {
	var rec entryRecord
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&rec); err != nil {
		return nil, err
	}
	// gob drops empty containers, the constructors require non-nil ones
	if rec.Headers == nil {
		rec.Headers = []cacheentry.Header{}
	}
	status := cacheentry.StatusLine{Proto: rec.Proto, Code: rec.Code, Reason: rec.Reason}
	resource := cacheentry.NewHeapResource(rec.Body)

	switch rec.Form {
	case formSet:
		set := make(map[string]struct{}, len(rec.VariantSet))
		for _, key := range rec.VariantSet {
			set[key] = struct{}{}
		}
		return cacheentry.NewWithVariantSet(rec.RequestDate, rec.ResponseDate, status, rec.Headers, resource, set)
	case formMap:
		variants := rec.VariantMap
		if variants == nil {
			variants = map[string]string{}
		}
		return cacheentry.NewWithVariantMap(rec.RequestDate, rec.ResponseDate, status, rec.Headers, resource, variants)
	}
	return nil, fmt.Errorf("unknown variant form %d", rec.Form)
}
