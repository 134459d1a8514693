package codec

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	cacheentry "github.com/always-cache/cache-entry"
)

var (
	requestDate  = time.Date(2023, 2, 5, 12, 0, 0, 0, time.UTC)
	responseDate = time.Date(2023, 2, 5, 12, 0, 1, 0, time.UTC)
)

func status() cacheentry.StatusLine {
	return cacheentry.StatusLine{Proto: "HTTP/1.1", Code: 200, Reason: "OK"}
}

func TestRoundTripMapForm(t *testing.T) {
	headers := []cacheentry.Header{
		{Name: "Vary", Value: "Accept"},
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Set-Cookie", Value: "b=2"},
	}
	entry, err := cacheentry.NewWithVariantMap(requestDate, responseDate, status(), headers,
		cacheentry.NewHeapResource([]byte("Hello world")), map[string]string{"k1": "k1"})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	bytes, err := EntryToBytes(entry)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := BytesToEntry(bytes)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if !decoded.RequestDate().Equal(requestDate) || !decoded.ResponseDate().Equal(responseDate) {
		t.Fatalf("Dates: %s", decoded)
	}
	if decoded.StatusLine() != status() {
		t.Fatalf("Status line is %s", decoded.StatusLine())
	}
	got := decoded.Headers()
	if len(got) != 3 || got[1].Value != "a=1" || got[2].Value != "b=2" {
		t.Fatalf("Headers: %v", got)
	}
	if !decoded.HasVariants() {
		t.Fatal("HasVariants is false")
	}
	variants, err := decoded.VariantMap()
	if err != nil || variants["k1"] != "k1" || len(variants) != 1 {
		t.Fatalf("Variant map: %v (error %v)", variants, err)
	}
	rc, err := decoded.Resource().Open()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || fmt.Sprintf("%s", body) != "Hello world" {
		t.Fatalf("Body is %s", body)
	}
}

func TestRoundTripKeepsSetForm(t *testing.T) {
	entry, err := cacheentry.NewWithVariantSet(requestDate, responseDate, status(), []cacheentry.Header{},
		cacheentry.NewHeapResource(nil), map[string]struct{}{"key1": {}, "key2": {}})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	bytes, err := EntryToBytes(entry)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := BytesToEntry(bytes)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	uris, err := decoded.VariantURIs()
	if err != nil || len(uris) != 2 {
		t.Fatalf("Variant URIs: %v (error %v)", uris, err)
	}
	// a set form entry must still refuse the map accessor after decoding
	if _, err := decoded.VariantMap(); !errors.Is(err, cacheentry.ErrUnsupportedOperation) {
		t.Fatalf("Variant map error is %v", err)
	}
}

func TestRoundTripEmptyEntry(t *testing.T) {
	entry, err := cacheentry.New(requestDate, responseDate, status(), []cacheentry.Header{}, cacheentry.NewHeapResource(nil))
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	bytes, err := EntryToBytes(entry)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := BytesToEntry(bytes)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(decoded.Headers()) != 0 || decoded.Resource().Size() != 0 {
		t.Fatalf("Decoded entry: %s", decoded)
	}
	if variants, err := decoded.VariantMap(); err != nil || len(variants) != 0 {
		t.Fatalf("Variant map: %v (error %v)", variants, err)
	}
}

func TestBytesToEntryGarbage(t *testing.T) {
	if _, err := BytesToEntry([]byte("not a gob stream")); err == nil {
		t.Fatal("No error for garbage input")
	}
}
