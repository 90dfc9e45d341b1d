package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name string
		env  string
		dir  func() (string, error)
		xdg  string
		want string
	}{
		{"config default", "XDG_CONFIG_HOME", configDir, "", filepath.Join(home, ".config", "lineage")},
		{"config xdg", "XDG_CONFIG_HOME", configDir, "/srv/conf", "/srv/conf/lineage"},
		{"cache default", "XDG_CACHE_HOME", cacheDir, "", filepath.Join(home, ".cache", "lineage")},
		{"cache xdg", "XDG_CACHE_HOME", cacheDir, "/var/cache", "/var/cache/lineage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.xdg)
			got, err := tt.dir()
			if err != nil || got != tt.want {
				t.Errorf("dir() = %q, %v, want %q", got, err, tt.want)
			}
		})
	}
}
