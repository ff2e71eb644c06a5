package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/apppaths"
)

const (
	DefaultNodeVersion    = "v20.18.1"
	DefaultDistURL        = "https://nodejs.org/dist"
	DefaultCliPackage     = "@anthropic-ai/claude-code"
	defaultInstallTimeout = 10 * time.Minute
)

type ProvisionerConfig struct {
	Paths       apppaths.Paths
	NodeVersion string
	DistURL     string
	CliPackage  string
	// InstallTimeout bounds the tar extraction and the npm install.
	InstallTimeout time.Duration
	HTTPClient     *http.Client
	Logger         *zap.SugaredLogger
}

// Provisioner installs a private Node.js runtime and the CLI package under
// the application's lib directory. Both steps are idempotent.
type Provisioner struct {
	paths          apppaths.Paths
	nodeVersion    string
	distURL        string
	cliPackage     string
	installTimeout time.Duration
	logger         *zap.SugaredLogger

	goarch        string
	newHTTPClient func() *http.Client
	execCommand   func(name string, args ...string) *exec.Cmd
}

func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Provisioner{
		paths:          cfg.Paths,
		nodeVersion:    orDefault(cfg.NodeVersion, DefaultNodeVersion),
		distURL:        orDefault(cfg.DistURL, DefaultDistURL),
		cliPackage:     orDefault(cfg.CliPackage, DefaultCliPackage),
		installTimeout: cfg.InstallTimeout,
		logger:         logger,
		goarch:         runtime.GOARCH,
		execCommand:    exec.Command,
	}
	if p.installTimeout <= 0 {
		p.installTimeout = defaultInstallTimeout
	}
	p.newHTTPClient = func() *http.Client {
		if cfg.HTTPClient != nil {
			return cfg.HTTPClient
		}
		return &http.Client{Timeout: 15 * time.Minute}
	}
	return p
}

func (p *Provisioner) RuntimeInstalled() bool { return p.paths.RuntimeInstalled() }
func (p *Provisioner) CliInstalled() bool { return p.paths.CliInstalled() }

// DownloadURL returns the runtime archive URL for the host platform.
func (p *Provisioner) DownloadURL() (string, error) {
	platform, ext, err := p.platform()
	if err != nil {
		return "", err
	}
	v := p.nodeVersion
	return fmt.Sprintf("%s/%s/node-%s-%s.%s", p.distURL, v, v, platform, ext), nil
}

func (p *Provisioner) platform() (string, string, error) {
	var arch string
	switch p.goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	default:
		return "", "", fmt.Errorf("unsupported architecture %q", p.goarch)
	}

	switch p.paths.GOOS {
	case "windows":
		return "win-" + arch, "zip", nil
	case "darwin", "linux":
		return p.paths.GOOS + "-" + arch, "tar.gz", nil
	default:
		return "", "", fmt.Errorf("unsupported OS %q", p.paths.GOOS)
	}
}

// EnsureRuntime downloads and unpacks Node.js unless the executable already exists.
func (p *Provisioner) EnsureRuntime(ctx context.Context, progress Progress) error {
	if p.RuntimeInstalled() {
		report(progress, "Node.js is already installed")
		return nil
	}

	url, err := p.DownloadURL()
	if err != nil {
		return apperr.NewSetupFailed(apperr.StageDownload, "resolve runtime archive", err)
	}
	if err := os.MkdirAll(p.paths.LibDir(), 0o755); err != nil {
		return apperr.NewSetupFailed(apperr.StageInstall, "create lib dir", err)
	}

	start := time.Now()
	p.logger.Infow("runtime_install_started", "version", p.nodeVersion, "url", url)
	report(progress, fmt.Sprintf("Downloading Node.js %s...", p.nodeVersion))

	archive, err := p.download(ctx, url)
	if archive != "" {
		defer func() { _ = os.Remove(archive) }()
	}
	if err != nil {
		return err
	}

	report(progress, "Extracting Node.js...")
	staging := filepath.Join(p.paths.LibDir(), ".extract-"+uuid.NewString())
	defer func() { _ = os.RemoveAll(staging) }()

	if err := p.extract(ctx, archive, staging); err != nil {
		return err
	}

	root, err := firstSubdir(staging)
	if err != nil {
		return apperr.NewSetupFailed(apperr.StageExtract, "locate runtime directory", err)
	}

	// Delete-then-move: a crash in between leaves no runtime and the next run reinstalls.
	if err := os.RemoveAll(p.paths.NodeDir()); err != nil {
		return apperr.NewSetupFailed(apperr.StageInstall, "remove previous runtime", err)
	}
	if err := os.Rename(root, p.paths.NodeDir()); err != nil {
		return apperr.NewSetupFailed(apperr.StageInstall, "move runtime into place", err)
	}
	if !p.RuntimeInstalled() {
		return apperr.NewSetupFailed(apperr.StageInstall, "runtime executable missing after install", errors.New(p.paths.NodeExe()))
	}

	p.logger.Infow(
		"runtime_install_finished",
		"version", p.nodeVersion,
		"dir", p.paths.NodeDir(),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	report(progress, "Node.js installed")
	return nil
}

// download streams url into a temp file. The returned path is set whenever a
// file was created, even on error, so the caller can clean it up.
func (p *Provisioner) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.NewSetupFailed(apperr.StageDownload, "build request", err)
	}

	resp, err := p.newHTTPClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", apperr.NewCanceled("runtime download", ctxErr)
		}
		return "", apperr.NewSetupFailed(apperr.StageDownload, "fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.NewSetupFailed(apperr.StageDownload, "fetch "+url, fmt.Errorf("unexpected status %s", resp.Status))
	}

	f, err := os.CreateTemp("", "mdmemo-node-*"+archiveExt(url))
	if err != nil {
		return "", apperr.NewSetupFailed(apperr.StageDownload, "create temp archive", err)
	}
	path := f.Name()

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return path, apperr.NewCanceled("runtime download", ctxErr)
		}
		return path, apperr.NewSetupFailed(apperr.StageDownload, "read archive body", copyErr)
	}
	if closeErr != nil {
		return path, apperr.NewSetupFailed(apperr.StageDownload, "write archive", closeErr)
	}

	p.logger.Infow("runtime_download_finished", "url", url, "bytes", n)
	return path, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
