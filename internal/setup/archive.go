package setup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/proc"
)

func archiveExt(name string) string {
	if strings.HasSuffix(name, ".zip") {
		return ".zip"
	}
	return ".tar.gz"
}

func (p *Provisioner) extract(ctx context.Context, archive, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return apperr.NewSetupFailed(apperr.StageExtract, "create staging dir", err)
	}
	if archiveExt(archive) == ".zip" {
		if err := extractZip(archive, dest); err != nil {
			return apperr.NewSetupFailed(apperr.StageExtract, "unzip runtime", err)
		}
		return nil
	}
	return p.extractTarGz(ctx, archive, dest)
}

// extractTarGz uses the system tar, which keeps symlinks and modes intact
// (npm's bin entries in the darwin archive are symlinks).
func (p *Provisioner) extractTarGz(ctx context.Context, archive, dest string) error {
	cmd := p.execCommand("tar", "xzf", archive, "-C", dest)
	res, err := proc.Run(ctx, cmd, proc.Options{Timeout: p.installTimeout})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperr.NewCanceled("runtime extract", ctxErr)
		}
		return apperr.NewSetupFailed(apperr.StageExtract, "run tar", err)
	}
	if res.ExitCode != 0 {
		return apperr.NewSetupFailed(
			apperr.StageExtract,
			fmt.Sprintf("tar exited with code %d", res.ExitCode),
			errors.New(strings.TrimSpace(res.Stderr)),
		)
	}
	return nil
}

func extractZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("zip entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := writeZipEntry(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// firstSubdir returns the first directory directly under dir. Node archives
// hold exactly one, named after the version and platform.
func firstSubdir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no directory found in %s", dir)
}
