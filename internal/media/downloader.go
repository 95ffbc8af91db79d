package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/provider"
	"github.com/pders01/pixwall/internal/storage"
	"github.com/pders01/pixwall/internal/validation"
)

// MsgDownloaded is shown after a successful download.
const MsgDownloaded = "Image downloaded successfully"

// maxImageSize caps a single download.
const maxImageSize = 64 << 20

// ProgressFunc receives bytes written so far and the expected total, which
// is -1 when the server does not say.
type ProgressFunc func(written, total int64)

// DownloadRecorder keeps the download history. storage.Store satisfies it.
type DownloadRecorder interface {
	RecordDownload(d *storage.Download) error
}

// Downloader saves images into the downloads directory.
type Downloader struct {
	client    *http.Client
	dir       string
	userAgent string
	validator *validation.URLValidator
	detector  *FormatDetector
	recorder  DownloadRecorder
	log       *debuglog.FieldLogger
}

// NewDownloader builds a Downloader. recorder may be nil.
func NewDownloader(cfg *config.Config, recorder DownloadRecorder) (*Downloader, error) {
	detector, err := NewFormatDetector()
	if err != nil {
		return nil, fmt.Errorf("loading image formats: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Provider.RetryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	client := rc.StandardClient()
	client.Timeout = 2 * time.Minute

	validator := validation.NewURLValidator()
	if cfg.Downloads.AllowPrivateHosts {
		validator = validation.NewPermissiveURLValidator()
	}

	return &Downloader{
		client:    client,
		dir:       cfg.Downloads.Dir,
		userAgent: cfg.Provider.UserAgent,
		validator: validator,
		detector:  detector,
		recorder:  recorder,
		log:       debuglog.WithFields(map[string]interface{}{"component": "downloader"}),
	}, nil
}

func (d *Downloader) Dir() string {
	return d.dir
}

// SourceURL picks the image URL to fetch for rec.
func SourceURL(rec provider.ImageRecord) string {
	for _, u := range []string{rec.WebformatURL, rec.LargeImageURL, rec.PreviewURL} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Download fetches rec's image and returns the saved path. The file appears
// under its final name only once complete.
func (d *Downloader) Download(ctx context.Context, rec provider.ImageRecord, progress ProgressFunc) (string, error) {
	src := SourceURL(rec)
	if src == "" {
		return "", fmt.Errorf("image %d has no URL", rec.ID)
	}
	if _, err := d.validator.Validate(src); err != nil {
		return "", fmt.Errorf("refusing to download: %w", err)
	}

	dir, err := validation.EnsureDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("downloads directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
	if resp.ContentLength > maxImageSize {
		return "", fmt.Errorf("image too large (%d bytes)", resp.ContentLength)
	}

	name := d.fileName(rec, resp.Header.Get("Content-Type"))
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".pixwall-*.part")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	total := resp.ContentLength
	var body io.Reader = io.LimitReader(resp.Body, maxImageSize+1)
	if progress != nil {
		body = &progressReader{r: body, total: total, fn: progress}
	}

	written, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("writing image: %w", closeErr)
	}
	if written > maxImageSize {
		return "", fmt.Errorf("image too large")
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}

	d.log.Infof("saved image %d to %s (%d bytes)", rec.ID, dest, written)

	if d.recorder != nil {
		entry := &storage.Download{
			ImageID: rec.ID,
			URL:     src,
			Path:    dest,
			Size:    written,
			Tags:    rec.Tags,
		}
		if recErr := d.recorder.RecordDownload(entry); recErr != nil {
			d.log.Warnf("recording download: %v", recErr)
		}
	}

	return dest, nil
}

// fileName uses the preview URL's last element, falling back to a random
// name with an extension from the response type.
func (d *Downloader) fileName(rec provider.ImageRecord, contentType string) string {
	for _, u := range []string{rec.PreviewURL, SourceURL(rec)} {
		if u == "" {
			continue
		}
		name := validation.SanitizeFilename(path.Base(strings.SplitN(u, "?", 2)[0]))
		if name != "" && d.detector.IsImage(name) {
			return name
		}
	}

	ext := d.detector.ExtensionFor(contentType)
	if ext == "" {
		ext = ".jpg"
	}
	prefix := "pixwall"
	if rec.ID != 0 {
		prefix += "-" + strconv.Itoa(rec.ID)
	}
	return prefix + "-" + uuid.NewString()[:8] + ext
}

type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	fn      ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.written, p.total)
	}
	return n, err
}
