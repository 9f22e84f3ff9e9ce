package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"auto_repost_instagram/config"
	httpclient "auto_repost_instagram/internal/infrastructure/http"
	"auto_repost_instagram/internal/logger"
)

const defaultBufferSize = 1024 * 1024

// Service streams remote media into the resource folder
type Service struct {
	httpClient  *httpclient.HTTPClient
	downloadDir string
	bufferSize  int
}

// NewService creates a new download service
func NewService(cfg *config.Config, httpClient *httpclient.HTTPClient) (*Service, error) {
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	bufferSize := cfg.DownloadBufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Service{
		httpClient:  httpClient,
		downloadDir: cfg.DownloadDir,
		bufferSize:  bufferSize,
	}, nil
}

// Dir returns the folder downloads are written to
func (s *Service) Dir() string {
	return s.downloadDir
}

// DownloadResult contains the result of a download operation
type DownloadResult struct {
	// FilePath is the path to the downloaded file
	FilePath string

	// FileSize is the size of the downloaded file in bytes
	FileSize int64

	// Duration is the time taken to download
	Duration time.Duration
}

// Fetch executes req and streams a 200 response body into destFolder/fileName.
// An empty destFolder means the service folder. Partial files are removed on failure.
func (s *Service) Fetch(ctx context.Context, req *http.Request, destFolder, fileName string) (*DownloadResult, error) {
	startTime := time.Now()
	if destFolder == "" {
		destFolder = s.downloadDir
	}
	if err := os.MkdirAll(destFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	resp, err := s.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	outputPath := filepath.Join(destFolder, filepath.Base(fileName))
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, s.bufferSize)
	size, err := io.CopyBuffer(file, resp.Body, buffer)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return &DownloadResult{
		FilePath: outputPath,
		FileSize: size,
		Duration: time.Since(startTime),
	}, nil
}

// CleanupOldDownloads removes files older than maxAge and returns how many were deleted
func (s *Service) CleanupOldDownloads(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.downloadDir)
	if err != nil {
		return 0, err
	}

	removed := 0
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) > maxAge {
			filePath := filepath.Join(s.downloadDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				logger.Warn().Warnf("failed to remove %s: %v", filePath, err)
				continue
			}
			removed++
		}
	}

	return removed, nil
}
