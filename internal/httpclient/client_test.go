package httpclient

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s default timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		t.Error("expected non-zero idle connection pool")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("IntegerSeconds", func(t *testing.T) {
		t.Setenv("INDCAT_TEST_DURATION", "30")
		if got := getEnvDuration("INDCAT_TEST_DURATION", time.Second); got != 30*time.Second {
			t.Errorf("expected 30s, got %v", got)
		}
	})

	t.Run("GoDurationString", func(t *testing.T) {
		t.Setenv("INDCAT_TEST_DURATION", "1m30s")
		if got := getEnvDuration("INDCAT_TEST_DURATION", time.Second); got != 90*time.Second {
			t.Errorf("expected 90s, got %v", got)
		}
	})

	t.Run("InvalidFallsBack", func(t *testing.T) {
		t.Setenv("INDCAT_TEST_DURATION", "soon")
		if got := getEnvDuration("INDCAT_TEST_DURATION", 7*time.Second); got != 7*time.Second {
			t.Errorf("expected default 7s, got %v", got)
		}
	})

	t.Run("UnsetFallsBack", func(t *testing.T) {
		if got := getEnvDuration("INDCAT_TEST_DURATION_UNSET", 3*time.Second); got != 3*time.Second {
			t.Errorf("expected default 3s, got %v", got)
		}
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("NilUsesDefaults", func(t *testing.T) {
		client := NewHTTPClient(nil)
		if client.Timeout != 10*time.Second {
			t.Errorf("expected default timeout, got %v", client.Timeout)
		}
	})

	t.Run("CustomTimeout", func(t *testing.T) {
		client := NewHTTPClient(&ClientConfig{Timeout: 3 * time.Second})
		if client.Timeout != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", client.Timeout)
		}
	})
}
