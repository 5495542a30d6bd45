package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"calendario/internal/config"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "sqlite with path", config: Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "unknown type", config: Config{Type: "sheets"}, wantErr: "invalid backend type: sheets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "/tmp/c.db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "/tmp/c.db" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if mem.Backend == nil || mem.Cleanup != nil {
		t.Fatalf("unexpected memory result: %+v", mem)
	}

	sq, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if sq.Cleanup == nil {
		t.Fatalf("sqlite backend must provide cleanup")
	}
	if err := sq.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
