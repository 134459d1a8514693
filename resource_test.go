package cacheentry

import (
	"fmt"
	"io"
	"os"
	"testing"
)

func TestHeapResource(t *testing.T) {
	original := []byte("This is the body")
	resource := NewHeapResource(original)

	// the resource holds its own copy
	original[0] = 'X'

	if resource.Size() != 16 {
		t.Fatalf("Size is %d", resource.Size())
	}
	rc, err := resource.Open()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || fmt.Sprintf("%s", body) != "This is the body" {
		t.Fatalf("Body is %s", body)
	}

	if err := resource.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if err := resource.Release(); err != nil {
		t.Fatalf("Second release error: %v", err)
	}
}

func TestFileResource(t *testing.T) {
	resource, err := NewFileResource(t.TempDir(), []byte("This is the body"))
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if resource.Size() != 16 {
		t.Fatalf("Size is %d", resource.Size())
	}
	rc, err := resource.Open()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || fmt.Sprintf("%s", body) != "This is the body" {
		t.Fatalf("Body is %s", body)
	}

	if err := resource.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if _, err := os.Stat(resource.Path()); !os.IsNotExist(err) {
		t.Fatalf("Backing file still exists: %v", err)
	}
	if err := resource.Release(); err != nil {
		t.Fatalf("Second release error: %v", err)
	}
}

func TestOpenFileResource(t *testing.T) {
	path := t.TempDir() + "/body"
	if err := os.WriteFile(path, []byte("spooled"), 0644); err != nil {
		t.Fatalf("Error: %v", err)
	}
	resource, err := OpenFileResource(path)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if resource.Size() != 7 || resource.Path() != path {
		t.Fatalf("Size is %d, path is %s", resource.Size(), resource.Path())
	}
	if err := resource.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
}
