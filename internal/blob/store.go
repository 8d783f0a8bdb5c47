package blob

import (
	"context"
	"io"
)

// ProgressFunc receives (bytesTransferred, totalBytes) as an upload advances.
// Reported percentages are monotonically non-decreasing.
type ProgressFunc func(transferred, total int64)

// Store is the blob storage consumed by the upload pipeline: write a blob to a
// path, get back a durable public URL, delete by path.
type Store interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, progress ProgressFunc) (string, error)
	Delete(ctx context.Context, path string) error
}

// progressReader wraps the upload body and fires the callback as the
// underlying client consumes bytes.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	progress    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, progress: progress}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
		if pr.progress != nil {
			pr.progress(pr.transferred, pr.total)
		}
	}
	return n, err
}
