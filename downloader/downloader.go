// Package downloader drains a stream session to disk with progress
// reporting and optional rate limiting.
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytget/ytstream/internal/logger"
	"github.com/ytget/ytstream/internal/mimeext"
	"github.com/ytget/ytstream/internal/sanitize"
	"github.com/ytget/ytstream/stream"
)

const (
	temporaryFileSuffix = ".tmp"
	fallbackTitle       = "video"
)

// Progress holds information about download progress. Percent stays 0 when
// the total size is unknown (live streams).
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Downloader writes a stream to a file chunk by chunk.
type Downloader struct {
	ProgressFunc func(Progress)

	rateLimitBps int64
	log          *logger.ComponentLogger
}

// New creates a downloader. rateLimitBps=0 disables limiting.
func New(progressFunc func(Progress), rateLimitBps int64) *Downloader {
	if rateLimitBps < 0 {
		rateLimitBps = 0
	}
	return &Downloader{
		ProgressFunc: progressFunc,
		rateLimitBps: rateLimitBps,
		log:          logger.WithComponent(logger.ComponentDownloader),
	}
}

// DerivePath builds a safe output path from a media title and mime type.
// dir may be empty for the working directory.
func DerivePath(dir, title, mimeType string) string {
	if strings.TrimSpace(title) == "" {
		title = fallbackTitle
	}
	name := sanitize.ToSafeFilename(title, mimeext.ExtFromMime(mimeType))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// sleepForRate enforces a simple rate limit based on bytes written in this
// step.
func (d *Downloader) sleepForRate(written int64) {
	if d.rateLimitBps <= 0 || written <= 0 {
		return
	}
	dur := time.Duration(int64(time.Second) * written / d.rateLimitBps)
	if dur > 0 {
		time.Sleep(dur)
	}
}

// Download drains src into outputPath via a temporary file, renaming on
// completion. totalSize=0 means unknown; it only affects progress percent.
// An empty result removes the temp file and fails.
func (d *Downloader) Download(ctx context.Context, src stream.Stream, totalSize int64, outputPath string) error {
	tmpPath := outputPath + temporaryFileSuffix
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = outFile.Close() }()

	d.log.Info("download started", map[string]interface{}{
		"path":  outputPath,
		"total": totalSize,
	})

	var downloaded int64
	for {
		if err := ctx.Err(); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}

		chunk, err := src.Chunk(ctx)
		if err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("stream chunk: %w", err)
		}
		if chunk == nil {
			break
		}
		if len(chunk) == 0 {
			continue
		}

		if _, err := outFile.Write(chunk); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("write chunk: %w", err)
		}
		downloaded += int64(len(chunk))

		if d.ProgressFunc != nil {
			p := Progress{TotalSize: totalSize, DownloadedSize: downloaded}
			if totalSize > 0 {
				p.Percent = float64(downloaded) / float64(totalSize) * 100
			}
			d.ProgressFunc(p)
		}
		d.sleepForRate(int64(len(chunk)))
	}

	if downloaded == 0 {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("empty download: 0 bytes written")
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	d.log.Info("download finished", map[string]interface{}{
		"path": outputPath,
		"size": downloaded,
	})
	return os.Rename(tmpPath, outputPath)
}
