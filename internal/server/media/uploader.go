// Package media is the upload adapter: it takes a staged local file, stores
// it in S3-compatible object storage and returns the object's durable URL.
package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader consumes a local file and returns its durable URL. The local file
// is released exactly once whether the upload succeeds or fails.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, localPath string) (string, error)

func (f UploaderFunc) Upload(ctx context.Context, localPath string) (string, error) {
	return f(ctx, localPath)
}

// storageKey returns media/YYYY/M/D/<uuid><ext>.
func storageKey(now time.Time, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("media/%d/%d/%d/%s%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), ext)
}

// detectContentType sniffs at most the first 512 bytes.
func detectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// objectURL builds the public URL of key. publicBase wins when set; otherwise
// a path-style URL under endpoint, and the AWS virtual-hosted form last.
func objectURL(publicBase, endpoint, bucket, region, key string) (string, error) {
	switch {
	case publicBase != "":
		return url.JoinPath(publicBase, key)
	case endpoint != "":
		return url.JoinPath(endpoint, bucket, key)
	}
	return url.JoinPath(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region), key)
}
