package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"auto_repost_instagram/config"
	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/infrastructure/downloader"
	httpclient "auto_repost_instagram/internal/infrastructure/http"
)

// Media types reported by the gateway.
const (
	mediaTypePhoto = 1
	mediaTypeVideo = 2
	mediaTypeAlbum = 8
)

const defaultMediasAmount = 50

var errNotLoggedIn = errors.New("instagram session not established, call Login first")

// Service talks to an instagrapi-rest style gateway
type Service struct {
	client       *httpclient.HTTPClient
	downloader   *downloader.Service
	baseURL      string
	mediasAmount int

	mu        sync.RWMutex
	sessionID string
}

var _ domain.PlatformClient = (*Service)(nil)

// NewService creates a new Instagram gateway client
func NewService(cfg *config.Config, httpClient *httpclient.HTTPClient, dl *downloader.Service) *Service {
	amount := cfg.MediasAmount
	if amount <= 0 {
		amount = defaultMediasAmount
	}
	return &Service{
		client:       httpClient,
		downloader:   dl,
		baseURL:      cfg.PlatformBaseURL,
		mediasAmount: amount,
	}
}

// Login authenticates against the gateway and keeps the session id
func (s *Service) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var sessionID string
	if err := s.postForm(ctx, "/auth/login", form, &sessionID); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if sessionID == "" {
		return fmt.Errorf("login failed: empty session id")
	}

	s.mu.Lock()
	s.sessionID = sessionID
	s.mu.Unlock()
	return nil
}

// ResolveAccountID maps a username to its user id
func (s *Service) ResolveAccountID(ctx context.Context, username string) (string, error) {
	form, err := s.sessionForm()
	if err != nil {
		return "", err
	}
	form.Set("username", username)

	var id flexibleID
	if err := s.postForm(ctx, "/user/id_from_username", form, &id); err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", username, err)
	}
	if id == "" {
		return "", fmt.Errorf("failed to resolve %s: %w", username, domain.ErrNotFound)
	}
	return string(id), nil
}

// ListMedia returns the most recent media of the user
func (s *Service) ListMedia(ctx context.Context, accountID string) ([]domain.MediaItem, error) {
	form, err := s.sessionForm()
	if err != nil {
		return nil, err
	}
	form.Set("user_id", accountID)
	form.Set("amount", strconv.Itoa(s.mediasAmount))

	var medias []mediaPayload
	if err := s.postForm(ctx, "/user/medias", form, &medias); err != nil {
		return nil, fmt.Errorf("failed to list media for %s: %w", accountID, err)
	}

	items := make([]domain.MediaItem, 0, len(medias))
	for _, m := range medias {
		items = append(items, m.toDomain())
	}
	return items, nil
}

// DownloadMedia stores a photo or video into destFolder
func (s *Service) DownloadMedia(ctx context.Context, item domain.MediaItem, destFolder string) (string, error) {
	endpoint, ext, err := downloadRoute(item)
	if err != nil {
		return "", err
	}

	form, err := s.sessionForm()
	if err != nil {
		return "", err
	}
	form.Set("media_pk", item.ID)
	form.Set("folder", destFolder)
	form.Set("returnFile", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.combinePath(endpoint), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.downloader.Fetch(ctx, req, destFolder, item.ID+ext)
	if err != nil {
		return "", fmt.Errorf("%w: media %s: %v", domain.ErrDownloadFailure, item.ID, err)
	}
	return res.FilePath, nil
}

// UploadSingle publishes one photo or video, chosen by file extension
func (s *Service) UploadSingle(ctx context.Context, filePath, caption string) (*domain.PostResult, error) {
	endpoint := "/photo/upload"
	if isVideoFile(filePath) {
		endpoint = "/video/upload"
	}
	return s.upload(ctx, endpoint, "file", []string{filePath}, caption)
}

// UploadAlbum publishes several files as one carousel
func (s *Service) UploadAlbum(ctx context.Context, filePaths []string, caption string) (*domain.PostResult, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("album upload requires at least one file")
	}
	return s.upload(ctx, "/album/upload", "files", filePaths, caption)
}

// upload streams the files as multipart form data through an io.Pipe
func (s *Service) upload(ctx context.Context, endpoint, field string, filePaths []string, caption string) (*domain.PostResult, error) {
	form, err := s.sessionForm()
	if err != nil {
		return nil, err
	}
	form.Set("caption", caption)

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		buffer := make([]byte, 1024*1024)
		for key := range form {
			if err := writer.WriteField(key, form.Get(key)); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		for _, path := range filePaths {
			if err := copyFilePart(writer, field, path, buffer); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if err := writer.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	resp, err := s.client.PostBody(ctx, s.combinePath(endpoint), writer.FormDataContentType(), pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("upload to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, previewBody(bodyBytes))
	}

	var media mediaPayload
	if err := json.Unmarshal(bodyBytes, &media); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w; body=%s", err, previewBody(bodyBytes))
	}

	return &domain.PostResult{
		MediaID:     string(media.PK),
		Code:        media.Code,
		CaptionText: media.CaptionText,
	}, nil
}

func copyFilePart(writer *multipart.Writer, field, path string, buffer []byte) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.CopyBuffer(part, file, buffer)
	return err
}

func (s *Service) sessionForm() (url.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessionID == "" {
		return nil, errNotLoggedIn
	}
	form := url.Values{}
	form.Set("sessionid", s.sessionID)
	return form, nil
}

func (s *Service) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	resp, err := s.client.PostForm(ctx, s.combinePath(endpoint), form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d: %s", endpoint, resp.StatusCode, previewBody(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w; body=%s", endpoint, err, previewBody(bodyBytes))
	}
	return nil
}

func downloadRoute(item domain.MediaItem) (string, string, error) {
	switch item.Kind {
	case domain.MediaKindPhoto:
		return "/photo/download", ".jpg", nil
	case domain.MediaKindVideo:
		switch item.ProductType {
		case domain.ProductTypeIGTV:
			return "/igtv/download", ".mp4", nil
		case domain.ProductTypeClips:
			return "/clip/download", ".mp4", nil
		default:
			return "/video/download", ".mp4", nil
		}
	default:
		return "", "", fmt.Errorf("%w: %s %s", domain.ErrUnsupportedMedia, item.Kind, item.ID)
	}
}

func isVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		return true
	default:
		return false
	}
}

func previewBody(body []byte) string {
	bodyStr := strings.TrimSpace(string(body))
	const limit = 512
	if len(bodyStr) > limit {
		bodyStr = bodyStr[:limit] + "..."
	}
	return bodyStr
}

func (s *Service) combinePath(path string) string {
	if path == "" {
		return s.baseURL
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// flexibleID accepts ids encoded as JSON strings or numbers
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type resourcePayload struct {
	PK          flexibleID `json:"pk"`
	MediaType   int        `json:"media_type"`
	ProductType string     `json:"product_type"`
}

type mediaPayload struct {
	PK          flexibleID        `json:"pk"`
	Code        string            `json:"code"`
	MediaType   int               `json:"media_type"`
	ProductType string            `json:"product_type"`
	LikeCount   int64             `json:"like_count"`
	CaptionText string            `json:"caption_text"`
	Resources   []resourcePayload `json:"resources"`
}

func kindOf(mediaType int) domain.MediaKind {
	switch mediaType {
	case mediaTypePhoto:
		return domain.MediaKindPhoto
	case mediaTypeVideo:
		return domain.MediaKindVideo
	case mediaTypeAlbum:
		return domain.MediaKindAlbum
	default:
		return domain.MediaKindUnknown
	}
}

func (m mediaPayload) toDomain() domain.MediaItem {
	item := domain.MediaItem{
		ID:          string(m.PK),
		Kind:        kindOf(m.MediaType),
		ProductType: m.ProductType,
		Popularity:  m.LikeCount,
		CaptionText: m.CaptionText,
	}
	for _, r := range m.Resources {
		item.Resources = append(item.Resources, domain.MediaItem{
			ID:          string(r.PK),
			Kind:        kindOf(r.MediaType),
			ProductType: r.ProductType,
		})
	}
	return item
}
