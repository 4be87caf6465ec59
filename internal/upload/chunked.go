// Package upload implements the sequential chunked upload flow against the
// SivaCoR file store.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// DefaultChunkSize is the fixed chunk window (5 MiB).
const DefaultChunkSize = 5 * 1024 * 1024

// ErrEmptyFile is returned when the selected file has no content.
var ErrEmptyFile = errors.New("cannot upload an empty file")

// Service is the slice of the API client the uploader needs.
type Service interface {
	InitiateUpload(ctx context.Context, folderID, name string, size int64, mimeType string) (*models.UploadSession, error)
	UploadChunk(ctx context.Context, uploadID string, offset int64, chunk []byte) (*models.UploadedFile, error)
}

// ProgressFunc receives upload progress after every chunk.
// percent is floor(bytesSent/totalBytes*100).
type ProgressFunc func(percent int, status string)

// Uploader splits a local file into fixed-size chunks and uploads them
// strictly sequentially: chunk N+1 is not sent until chunk N's response has
// been received, preserving server-side offset correctness. There is no
// resume: any chunk failure discards the whole session and the caller must
// restart from scratch.
type Uploader struct {
	svc       Service
	chunkSize int64
	progress  ProgressFunc
}

// New creates an uploader with the default 5 MiB chunk size.
func New(svc Service) *Uploader {
	return &Uploader{
		svc:       svc,
		chunkSize: DefaultChunkSize,
	}
}

// SetChunkSize overrides the chunk window. Values <= 0 are ignored.
func (u *Uploader) SetChunkSize(size int64) {
	if size > 0 {
		u.chunkSize = size
	}
}

// SetProgress installs a progress callback.
func (u *Uploader) SetProgress(fn ProgressFunc) {
	u.progress = fn
}

// UploadFile uploads a local file into the given folder and returns the
// finalized file id.
func (u *Uploader) UploadFile(ctx context.Context, localPath, folderID string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("'%s' is a directory, not a file", localPath)
	}

	name := filepath.Base(localPath)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return u.Upload(ctx, f, name, info.Size(), mimeType, folderID)
}

// Upload runs the chunked upload sequence over an arbitrary reader of known
// size: initiate a session, then send ceil(size/chunkSize) chunks back to
// back, the last of which may be shorter. The final chunk's response carries
// the finalized file id.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, name string, size int64, mimeType, folderID string) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}

	u.report(0, "initiating upload")

	session, err := u.svc.InitiateUpload(ctx, folderID, name, size, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to initiate upload: %w", err)
	}

	buf := make([]byte, u.chunkSize)
	var sent int64
	var fileID string

	for sent < size {
		window := u.chunkSize
		if remaining := size - sent; remaining < window {
			window = remaining
		}

		n, err := io.ReadFull(r, buf[:window])
		if err != nil {
			return "", fmt.Errorf("failed to read chunk at offset %d: %w", sent, err)
		}

		resp, err := u.svc.UploadChunk(ctx, session.ID, sent, buf[:n])
		if err != nil {
			// No resume-from-offset: the partial session is abandoned.
			return "", fmt.Errorf("chunk upload at offset %d failed: %w", sent, err)
		}

		sent += int64(n)
		u.report(int(sent*100/size), fmt.Sprintf("uploaded %d of %d bytes", sent, size))

		if sent == size {
			fileID = resp.ID
		}
	}

	if fileID == "" {
		return "", fmt.Errorf("upload finished but no file id was returned")
	}

	u.report(100, "upload complete")
	return fileID, nil
}

func (u *Uploader) report(percent int, status string) {
	if u.progress != nil {
		u.progress(percent, status)
	}
}
