// Package storage holds proof-of-deposit attachments. Writes are not
// transactional with the ledger: a blob must land before the detail row
// that references it is inserted, and blobs orphaned by a rolled-back
// submission are left in place.
package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// MaxAttachmentSize caps a single uploaded file at 5 MiB.
const MaxAttachmentSize = 5 << 20

// Store is the attachment store boundary. Put persists content under
// key and returns the opaque reference recorded on the detail row; URL
// resolves a reference to something a client can fetch.
type Store interface {
	Put(ctx context.Context, key string, content io.Reader) (string, error)
	URL(ref string) string
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// AllowedExt reports whether the filename carries an allow-listed
// extension (images and PDFs only).
func AllowedExt(filename string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(filename))]
}

// NewKey builds a unique stored name for an upload:
// <field>-<unix ms>-<random>.<original ext>.
func NewKey(field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
}
