package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"receipt.jpg", true},
		{"receipt.JPEG", true},
		{"scan.png", true},
		{"deposit.pdf", true},
		{"deposit.PDF", true},
		{"payload.exe", false},
		{"notes.txt", false},
		{"noext", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := AllowedExt(tt.name); got != tt.want {
			t.Errorf("AllowedExt(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("attachment_42", "Deposit Slip.PDF")

	if !strings.HasPrefix(key, "attachment_42-") {
		t.Errorf("key %q should start with the field name", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("key %q should keep a lowercased original extension", key)
	}
	if strings.Contains(key, " ") {
		t.Errorf("key %q should not contain the original filename", key)
	}

	// Two keys for the same upload must not collide.
	if key2 := NewKey("attachment_42", "Deposit Slip.PDF"); key2 == key {
		t.Errorf("expected distinct keys, got %q twice", key)
	}
}

func TestDiskStorePutAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8081/")
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}

	ref, err := store.Put(context.Background(), "attachment_1-123-456.png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref != "/uploads/attachment_1-123-456.png" {
		t.Errorf("ref: got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "attachment_1-123-456.png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake-png" {
		t.Errorf("stored content: got %q", data)
	}

	if got := store.URL(ref); got != "http://localhost:8081/uploads/attachment_1-123-456.png" {
		t.Errorf("URL: got %q", got)
	}
	if got := store.URL(""); got != "" {
		t.Errorf("URL of empty ref: got %q, want empty", got)
	}
}

func TestDiskStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewDiskStore(dir, "http://localhost"); err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("upload dir not created: %v", err)
	}
}

func TestS3StoreValidation(t *testing.T) {
	if _, err := NewS3Store(S3Config{AccessKey: "k", SecretKey: "s"}); err == nil {
		t.Error("expected error for missing bucket")
	}
	if _, err := NewS3Store(S3Config{Bucket: "b", SecretKey: "s"}); err == nil {
		t.Error("expected error for missing access key")
	}
	if _, err := NewS3Store(S3Config{Bucket: "b", AccessKey: "k"}); err == nil {
		t.Error("expected error for missing secret key")
	}
}

func TestS3StoreURL(t *testing.T) {
	store, err := NewS3Store(S3Config{
		Bucket:       "proofs",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatalf("new s3 store: %v", err)
	}
	if got := store.URL("/uploads/attachment_1-1-1.pdf"); got != "http://localhost:9000/proofs/attachment_1-1-1.pdf" {
		t.Errorf("URL: got %q", got)
	}

	plain, err := NewS3Store(S3Config{Bucket: "proofs", AccessKey: "k", SecretKey: "s", Region: "ap-southeast-1"})
	if err != nil {
		t.Fatalf("new s3 store: %v", err)
	}
	if got := plain.URL("/uploads/a.png"); got != "https://proofs.s3.ap-southeast-1.amazonaws.com/a.png" {
		t.Errorf("URL: got %q", got)
	}
}
