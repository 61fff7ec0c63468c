package models

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"scribe/internal/language"
	"scribe/internal/logging"
	"scribe/internal/services"
)

const (
	defaultDownloadTimeout = 10 * time.Minute
	lockRetryDelay         = time.Second
)

// Request carries the model selection inputs for a run, in descending
// precedence: an explicit directory, a model name, then a language.
type Request struct {
	ExplicitPath string
	ModelName    string
	Language     string
}

// Resolver turns a model selection into an installed model directory.
type Resolver struct {
	cacheDir string
	catalog  *Catalog
	client   *http.Client
	logger   *slog.Logger
}

// NewResolver builds a resolver that installs models under cacheDir.
func NewResolver(cacheDir string, catalog *Catalog, downloadTimeout time.Duration, logger *slog.Logger) *Resolver {
	if downloadTimeout <= 0 {
		downloadTimeout = defaultDownloadTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		cacheDir: strings.TrimSpace(cacheDir),
		catalog:  catalog,
		client:   &http.Client{Timeout: downloadTimeout},
		logger:   logger,
	}
}

// Resolve locates the model directory for the request, downloading the model
// on first use. It returns the directory and the model name it settled on.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, string, error) {
	if explicit := strings.TrimSpace(req.ExplicitPath); explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", "", services.Wrap(services.ErrModelUnavailable, "models", "resolve model path", explicit, err)
		}
		if !info.IsDir() {
			return "", "", services.Wrap(services.ErrModelUnavailable, "models", "resolve model path",
				fmt.Sprintf("%s is not a directory", explicit), nil)
		}
		return explicit, filepath.Base(explicit), nil
	}

	name := strings.TrimSpace(req.ModelName)
	if name == "" {
		lang := language.Normalize(req.Language)
		if lang == "" {
			return "", "", services.Wrap(services.ErrModelUnavailable, "models", "select model",
				"no model path, name, or language configured", nil)
		}
		entry, ok, err := r.catalog.FindByLanguage(ctx, lang)
		if err != nil {
			return "", "", services.Wrap(services.ErrModelUnavailable, "models", "query catalog", lang, err)
		}
		if !ok {
			return "", "", services.Wrap(services.ErrModelUnavailable, "models", "select model",
				fmt.Sprintf("no model published for language %q", lang), nil)
		}
		name = entry.Name
	}

	dir, err := r.Ensure(ctx, name)
	if err != nil {
		return "", "", err
	}
	return dir, name, nil
}

// Ensure makes sure the named model is installed and returns its directory.
func (r *Resolver) Ensure(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrModelUnavailable, "models", "install model", "empty model name", nil)
	}

	dir := filepath.Join(r.cacheDir, name)
	if installed(dir) {
		return dir, nil
	}

	entry, ok, err := r.catalog.FindByName(ctx, name)
	if err != nil {
		return "", services.Wrap(services.ErrModelUnavailable, "models", "query catalog", name, err)
	}
	if !ok {
		return "", services.Wrap(services.ErrModelUnavailable, "models", "install model",
			fmt.Sprintf("model %q not in catalog", name), nil)
	}

	if err := r.install(ctx, entry, dir); err != nil {
		return "", services.Wrap(services.ErrModelUnavailable, "models", "install model", entry.Name, err)
	}
	return dir, nil
}

// Installed reports whether the named model is already present in the cache.
func Installed(cacheDir, name string) bool {
	return installed(filepath.Join(strings.TrimSpace(cacheDir), name))
}

func installed(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// install downloads, verifies, and unpacks entry into dir. A per-model file
// lock serializes concurrent installers; whoever wins does the work and the
// rest observe the finished directory after the recheck.
func (r *Resolver) install(ctx context.Context, entry Entry, dir string) error {
	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(filepath.Join(r.cacheDir, "."+entry.Name+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire model lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire model lock: not acquired")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if installed(dir) {
		return nil
	}

	r.logger.Info("downloading model",
		logging.String("model", entry.Name),
		logging.String("size", entry.SizeText),
		logging.String("url", entry.URL))

	archivePath, err := r.download(ctx, entry)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	staging, err := os.MkdirTemp(r.cacheDir, "."+entry.Name+".unpack-*")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := unpackZip(archivePath, staging); err != nil {
		return fmt.Errorf("unpack model archive: %w", err)
	}

	root, err := modelRoot(staging, entry.Name)
	if err != nil {
		return err
	}
	if err := os.Rename(root, dir); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}

	r.logger.Info("model installed",
		logging.String("model", entry.Name),
		logging.String("dir", dir))
	return nil
}

// download streams the model archive to a temp file, verifying the catalog
// checksum on the way through.
func (r *Resolver) download(ctx context.Context, entry Entry) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download model: unexpected status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp(r.cacheDir, "."+entry.Name+".zip-*")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	archivePath := out.Name()

	hasher := md5.New() //nolint:gosec
	written, err := io.Copy(io.MultiWriter(out, hasher), resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("write model archive: %w", err)
	}

	if want := strings.TrimSpace(entry.MD5); want != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, want) {
			os.Remove(archivePath)
			return "", fmt.Errorf("model checksum mismatch: got %s, want %s", got, want)
		}
	}

	r.logger.Debug("model archive downloaded",
		logging.String("model", entry.Name),
		logging.Int64("bytes", written))
	return archivePath, nil
}

// modelRoot locates the unpacked model directory inside staging. Archives
// are rooted at a directory named after the model; a single top-level
// directory is accepted as a fallback.
func modelRoot(staging, name string) (string, error) {
	candidate := filepath.Join(staging, name)
	if installed(candidate) {
		return candidate, nil
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("inspect staging directory: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) == 1 {
		return filepath.Join(staging, dirs[0]), nil
	}
	return "", fmt.Errorf("unexpected archive layout: %d top-level directories", len(dirs))
}
