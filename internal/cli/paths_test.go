package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matzehuels/fwmeta/pkg/config"
)

func TestCacheDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux-specific")
	}
	t.Setenv("XDG_CACHE_HOME", "")

	cfg := config.Default()
	dir, err := cacheDir(&cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux-specific")
	}
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	cfg := config.Default()
	dir, err := cacheDir(&cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/srv/fwmeta/cache"

	dir, err := cacheDir(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dir != cfg.Cache.Dir {
		t.Errorf("cacheDir() = %q, want configured %q", dir, cfg.Cache.Dir)
	}
}

func TestCatalogDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	cfg := config.Default()
	dir, err := catalogDir(&cfg)
	if err != nil {
		t.Fatalf("catalogDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("catalogDir() = %q, should be under home %q", dir, home)
	}
	if want := filepath.Join(".local", "share", appName, "catalog"); !strings.HasSuffix(dir, want) {
		t.Errorf("catalogDir() = %q, should end with %q", dir, want)
	}
}

func TestCatalogDirXDG(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	cfg := config.Default()
	dir, err := catalogDir(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(data, appName, "catalog"); dir != want {
		t.Errorf("catalogDir() = %q, want %q", dir, want)
	}
}
