package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Publisher exports a report and returns where it was written.
type Publisher interface {
	Publish(ctx context.Context, r Report) (string, error)
}

// ObjectName is the bucket path of a report:
// month-close/<yyyy-mm>/<session>-<suffix>.json.
func ObjectName(r Report, suffix string) string {
	session := r.SessionID
	if session == "" {
		session = "anonymous"
	}
	return fmt.Sprintf("month-close/%s/%s-%s.json", r.Month, session, suffix)
}

// Encode writes the report as indented JSON.
func Encode(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("Encode: encode report: %w", err)
	}
	return nil
}

// GCSPublisher writes reports to a Google Cloud Storage bucket.
type GCSPublisher struct {
	client *storage.Client
	bucket string
}

// NewGCSPublisher creates a storage client. With an empty credentialsFile
// Application Default Credentials are used.
func NewGCSPublisher(ctx context.Context, bucket, credentialsFile string) (*GCSPublisher, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCSPublisher: bucket is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSPublisher: create storage client: %w", err)
	}
	return &GCSPublisher{client: client, bucket: bucket}, nil
}

// Publish uploads the report and returns its gs:// URI.
func (p *GCSPublisher) Publish(ctx context.Context, r Report) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	name := ObjectName(r, uuid.New().String())
	w := p.client.Bucket(p.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := Encode(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Publish: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Publish: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", p.bucket, name), nil
}

// Close releases the storage client.
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}

var _ Publisher = (*GCSPublisher)(nil)
