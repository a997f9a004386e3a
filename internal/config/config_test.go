package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:             "8081",
		LogLevel:         "info",
		DataBackend:      "memory",
		SQLiteDBPath:     "./test.db",
		AuthMode:         "header",
		AMQPExchange:     "tally",
		AMQPQueue:        "mirror_transactions",
		MirrorBatchSize:  10,
		MirrorInterval:   30 * time.Second,
		SummaryCacheSize: 64,
		SummaryCacheTTL:  time.Minute,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{
			name:   "valid memory backend",
			mutate: func(c *Config) {},
		},
		{
			name: "valid sqlite backend",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
			},
		},
		{
			name: "valid firebase auth",
			mutate: func(c *Config) {
				c.AuthMode = "firebase"
				c.FirebaseProjectID = "tally-prod"
			},
		},
		{
			name:        "non-numeric port",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			errorString: "invalid data backend 'postgres'",
		},
		{
			name: "sqlite backend without path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "firebase auth without project",
			mutate: func(c *Config) {
				c.AuthMode = "firebase"
				c.FirebaseProjectID = ""
			},
			errorString: "FIREBASE_PROJECT_ID is required",
		},
		{
			name:        "unknown auth mode",
			mutate:      func(c *Config) { c.AuthMode = "basic" },
			errorString: "invalid auth mode 'basic'",
		},
		{
			name:        "bad AMQP scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/" },
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name: "AMQP without exchange",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = ""
			},
			errorString: "AMQP exchange name cannot be empty",
		},
		{
			name: "AMQP without queue",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPQueue = ""
			},
			errorString: "AMQP queue name cannot be empty",
		},
		{
			name:        "mirror without credentials",
			mutate:      func(c *Config) { c.MirrorSpreadsheetID = "abc123" },
			errorString: "either MIRROR_CREDENTIALS_FILE or MIRROR_CREDENTIALS_JSON",
		},
		{
			name: "mirror with missing credentials file",
			mutate: func(c *Config) {
				c.MirrorSpreadsheetID = "abc123"
				c.MirrorCredentialsFile = "/non/existent/creds.json"
			},
			errorString: "mirror credentials file does not exist",
		},
		{
			name:        "batch size too small",
			mutate:      func(c *Config) { c.MirrorBatchSize = 0 },
			errorString: "invalid mirror batch size 0",
		},
		{
			name:        "interval too short",
			mutate:      func(c *Config) { c.MirrorInterval = 500 * time.Millisecond },
			errorString: "invalid mirror interval 500ms",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.SummaryCacheSize = 0 },
			errorString: "invalid summary cache size 0",
		},
		{
			name:        "cache TTL too short",
			mutate:      func(c *Config) { c.SummaryCacheTTL = 100 * time.Millisecond },
			errorString: "invalid summary cache TTL 100ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.errorString)
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errorString)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.DataBackend = "postgres"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid data backend") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "LOG_LEVEL", "DATA_BACKEND", "SQLITE_DB_PATH", "AUTH_MODE",
		"AMQP_URL", "MIRROR_BATCH_SIZE", "MIRROR_INTERVAL",
	}
	original := map[string]string{}
	for _, key := range keys {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()
		if cfg.Port != "8081" {
			t.Errorf("Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.AuthMode != "header" {
			t.Errorf("AuthMode = %v, want header", cfg.AuthMode)
		}
		if cfg.MirrorBatchSize != 10 {
			t.Errorf("MirrorBatchSize = %v, want 10", cfg.MirrorBatchSize)
		}
		if cfg.MirrorInterval != 30*time.Second {
			t.Errorf("MirrorInterval = %v, want 30s", cfg.MirrorInterval)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("DATA_BACKEND", "sqlite")
		os.Setenv("SQLITE_DB_PATH", "/tmp/tally-test.db")
		os.Setenv("MIRROR_BATCH_SIZE", "25")
		os.Setenv("MIRROR_INTERVAL", "45s")

		cfg := Load()
		if cfg.Port != "9090" {
			t.Errorf("Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/tally-test.db" {
			t.Errorf("SQLiteDBPath = %v", cfg.SQLiteDBPath)
		}
		if cfg.MirrorBatchSize != 25 {
			t.Errorf("MirrorBatchSize = %v, want 25", cfg.MirrorBatchSize)
		}
		if cfg.MirrorInterval != 45*time.Second {
			t.Errorf("MirrorInterval = %v, want 45s", cfg.MirrorInterval)
		}
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		os.Setenv("MIRROR_BATCH_SIZE", "invalid")
		os.Setenv("MIRROR_INTERVAL", "invalid")

		cfg := Load()
		if cfg.MirrorBatchSize != 10 {
			t.Errorf("MirrorBatchSize = %v, want default 10", cfg.MirrorBatchSize)
		}
		if cfg.MirrorInterval != 30*time.Second {
			t.Errorf("MirrorInterval = %v, want default 30s", cfg.MirrorInterval)
		}
	})
}
