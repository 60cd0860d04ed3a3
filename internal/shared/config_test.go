package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Host != "127.0.0.1" || config.Server.Port != 8888 {
			t.Errorf("unexpected server defaults: %+v", config.Server)
		}
		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:8888/callback" {
			t.Errorf("unexpected redirect URI: %s", config.Credentials.Spotify.RedirectURI)
		}
		if got := config.PollInterval(); got != 1250*time.Millisecond {
			t.Errorf("unexpected poll interval: %v", got)
		}
		if got := config.ListenAddr(); got != "127.0.0.1:8888" {
			t.Errorf("unexpected listen addr: %s", got)
		}
	})

	t.Run("Poll Interval Falls Back When Unset", func(t *testing.T) {
		config := &Config{}
		if got := config.PollInterval(); got != 1250*time.Millisecond {
			t.Errorf("expected default interval, got %v", got)
		}

		config.Player.PollIntervalMS = 2000
		if got := config.PollInterval(); got != 2*time.Second {
			t.Errorf("expected configured interval, got %v", got)
		}
	})

	t.Run("Save And Load Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "client_abc"
		config.Credentials.Spotify.RefreshToken = "refresh_xyz"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("expected save to succeed, got %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected load to succeed, got %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "client_abc" {
			t.Errorf("client id lost in round trip: %+v", loaded.Credentials.Spotify)
		}
		if loaded.Credentials.Spotify.RefreshToken != "refresh_xyz" {
			t.Errorf("refresh token lost in round trip: %+v", loaded.Credentials.Spotify)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600 on the saved config, got %o", perm)
		}
	})

	t.Run("Load Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})

	t.Run("Create Config File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected create to succeed, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "client_id") {
			t.Error("expected example config contents")
		}

		if err := CreateConfigFile(path); err == nil {
			t.Fatal("expected an error when the file already exists")
		}
	})
}
