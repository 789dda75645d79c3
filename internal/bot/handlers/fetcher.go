package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
)

// ErrFileTooLarge is returned when an attachment exceeds the download limit.
var ErrFileTooLarge = errors.New("file exceeds download limit")

// Fetcher downloads the bytes of a Telegram file.
type Fetcher interface {
	Fetch(ctx context.Context, m Messenger, fileID string) ([]byte, error)
}

// HTTPFetcher resolves files with getFile and downloads them over HTTP.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher returns a fetcher that refuses files larger than maxBytes.
// A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, maxBytes int64) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, maxBytes: maxBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, m Messenger, fileID string) (data []byte, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("empty file id")
	}

	fileObj, err := m.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, fmt.Errorf("empty file path returned from Telegram")
	}
	if f.maxBytes > 0 && int64(fileObj.FileSize) > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, int64(fileObj.FileSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.FileDownloadLink(fileObj), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err = io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty file data")
	}
	return data, nil
}
