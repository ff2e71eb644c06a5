// Package apppaths resolves the per-user directory layout: the private
// Node.js runtime, the npm prefix holding the CLI package, history and settings.
package apppaths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ultramdmemo/config"
)

const dirName = "UltraMDmemo"

type Paths struct {
	Base string
	// Home is the user's home directory; the CLI keeps credentials there.
	Home       string
	GOOS       string
	CliPackage string
}

// New builds Paths for the host OS.
func New(base, home, cliPackage string) Paths {
	return Paths{Base: base, Home: home, GOOS: runtime.GOOS, CliPackage: cliPackage}
}

func FromConfig(cfg *config.Config) (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home dir: %w", err)
	}
	base := cfg.HomeDir
	if base == "" {
		base = defaultBase(os.Getenv, home, runtime.GOOS)
	}
	return New(base, home, cfg.CliPackage), nil
}

func defaultBase(getenv func(string) string, home string, goos string) string {
	if goos == "windows" {
		if local := strings.TrimSpace(getenv("LOCALAPPDATA")); local != "" {
			return filepath.Join(local, dirName)
		}
		return filepath.Join(home, "AppData", "Local", dirName)
	}
	if xdg := strings.TrimSpace(getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, dirName)
	}
	return filepath.Join(home, ".local", "share", dirName)
}

func (p Paths) windows() bool { return p.GOOS == "windows" }

func (p Paths) LibDir() string { return filepath.Join(p.Base, "lib") }
func (p Paths) NodeDir() string { return filepath.Join(p.LibDir(), "nodejs") }
func (p Paths) NpmPrefix() string { return filepath.Join(p.LibDir(), "npm") }
func (p Paths) NpmCache() string { return filepath.Join(p.LibDir(), "npm-cache") }
func (p Paths) HistoryDir() string { return filepath.Join(p.Base, "history") }
func (p Paths) SettingsFile() string { return filepath.Join(p.Base, "settings.json") }
func (p Paths) CatalogFile() string { return filepath.Join(p.HistoryDir(), "catalog.db") }

// NodeBinDir is the directory to prepend to PATH for child processes.
func (p Paths) NodeBinDir() string {
	if p.windows() {
		return p.NodeDir()
	}
	return filepath.Join(p.NodeDir(), "bin")
}

func (p Paths) NodeExe() string {
	if p.windows() {
		return filepath.Join(p.NodeDir(), "node.exe")
	}
	return filepath.Join(p.NodeBinDir(), "node")
}

// NpmCli is the npm entry script bundled with the runtime archive.
func (p Paths) NpmCli() string {
	if p.windows() {
		return filepath.Join(p.NodeDir(), "node_modules", "npm", "bin", "npm-cli.js")
	}
	return filepath.Join(p.NodeDir(), "lib", "node_modules", "npm", "bin", "npm-cli.js")
}

// CliEntry is the installed CLI's cli.js. npm lays out global installs as
// {prefix}/node_modules on Windows and {prefix}/lib/node_modules elsewhere.
func (p Paths) CliEntry() string {
	pkg := filepath.FromSlash(p.CliPackage)
	if p.windows() {
		return filepath.Join(p.NpmPrefix(), "node_modules", pkg, "cli.js")
	}
	return filepath.Join(p.NpmPrefix(), "lib", "node_modules", pkg, "cli.js")
}

// CredentialsFile is where the CLI stores its OAuth tokens.
func (p Paths) CredentialsFile() string {
	return filepath.Join(p.Home, ".claude", ".credentials.json")
}

func (p Paths) RuntimeInstalled() bool { return isFile(p.NodeExe()) }
func (p Paths) CliInstalled() bool { return isFile(p.CliEntry()) }

func (p Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Base, p.LibDir(), p.HistoryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
