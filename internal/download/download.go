// Package download saves submission artifacts to local disk.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/sivacor/sivacor-cli/internal/logging"
)

// Service is the slice of the API client the downloader needs.
type Service interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, string, int64, error)
}

// Downloader writes artifact files into a destination directory, using the
// server-provided filename.
type Downloader struct {
	svc          Service
	logger       *logging.Logger
	showProgress bool
}

// New creates a downloader writing progress bars to stderr.
func New(svc Service, logger *logging.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Downloader{svc: svc, logger: logger, showProgress: true}
}

// SetShowProgress toggles the progress bar, for tests and scripted use.
func (d *Downloader) SetShowProgress(show bool) {
	d.showProgress = show
}

// Fetch downloads one artifact into destDir and returns the written path.
// The filename comes from the server's Content-Disposition header, falling
// back to the file id. An existing file at the target path is overwritten.
func (d *Downloader) Fetch(ctx context.Context, fileID, destDir string) (string, error) {
	body, filename, size, err := d.svc.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", fileID, err)
	}
	defer body.Close()

	if destDir != "" {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return "", fmt.Errorf("create destination directory: %w", err)
		}
	}
	destPath := filepath.Join(destDir, filepath.Base(filename))

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	var dst io.Writer = out
	if d.showProgress {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(filepath.Base(filename)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write %s: %w", destPath, err)
	}

	d.logger.Debug().Str("file_id", fileID).Str("path", destPath).Msg("Artifact downloaded")
	return destPath, nil
}
