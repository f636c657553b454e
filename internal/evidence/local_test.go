package evidence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_Upload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ref, err := store.Upload(context.Background(), []byte("png-bytes"), "shot.png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !filepath.IsAbs(ref) {
		t.Errorf("reference %q should be an absolute path", ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("artifact content = %q", data)
	}
	if !strings.HasSuffix(ref, "_shot.png") {
		t.Errorf("reference %q should keep the artifact name", ref)
	}
}

func TestLocalStore_UploadJSON(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ref, err := store.UploadJSON(context.Background(), map[string]string{"decision": "True Positive"}, "record.json")
	if err != nil {
		t.Fatalf("UploadJSON: %v", err)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["decision"] != "True Positive" {
		t.Errorf("got %v", got)
	}
}

func TestLocalStore_UploadCancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Upload(ctx, []byte("x"), "shot.png"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestNewLocalStore_ExistingDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewLocalStore(dir); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewLocalStore(dir); err != nil {
		t.Fatalf("second: %v", err)
	}
}
