package config

import (
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Store != StoreMemory || cfg.ContentDir != "content" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.RedisTTL != 720*time.Hour {
		t.Errorf("Expected a 30 day TTL, got %v", cfg.RedisTTL)
	}
	if cfg.MultiLevelPolicy != "once" || cfg.StrictContent {
		t.Errorf("Expected once and lenient content, got %q %v", cfg.MultiLevelPolicy, cfg.StrictContent)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TALEFORGE_STORE", "redis")
	t.Setenv("TALEFORGE_REDIS_DB", "3")
	t.Setenv("TALEFORGE_REDIS_TTL", "90s")
	t.Setenv("TALEFORGE_STRICT_CONTENT", "true")
	t.Setenv("TALEFORGE_MULTI_LEVEL_POLICY", "each")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Store != StoreRedis || cfg.RedisDB != 3 || cfg.RedisTTL != 90*time.Second {
		t.Errorf("Unexpected redis settings %+v", cfg)
	}
	if !cfg.StrictContent || cfg.MultiLevelPolicy != "each" {
		t.Errorf("Unexpected content settings %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"TALEFORGE_REDIS_DB", "not-an-int", "parse env:"},
		{"TALEFORGE_STORE", "postgres", "unknown store"},
		{"TALEFORGE_MULTI_LEVEL_POLICY", "twice", "unknown policy"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// Exitf calls os.Exit, so it runs in a subprocess.
func TestExitf(t *testing.T) {
	if os.Getenv("TALEFORGE_TEST_EXITF") == "1" {
		Exitf("fatal: %s", "something broke")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf$")
	cmd.Env = append(os.Environ(), "TALEFORGE_TEST_EXITF=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("Expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: something broke") {
		t.Errorf("Expected output to contain the message, got %q", out)
	}
}
