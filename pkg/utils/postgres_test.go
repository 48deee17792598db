package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns <= 0 || got.MaxIdleConns <= 0 {
		t.Fatalf("expected positive pool sizes, got %+v", got)
	}
	if got.PingTimeout <= 0 {
		t.Fatalf("expected ping timeout default")
	}
}

func TestPostgresPoolConfig_KeepsExplicitValues(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}
	got := in.withDefaults()
	if got.MaxOpenConns != 3 {
		t.Fatalf("expected explicit MaxOpenConns preserved, got %d", got.MaxOpenConns)
	}
	if got.PingTimeout != time.Second {
		t.Fatalf("expected explicit PingTimeout preserved, got %v", got.PingTimeout)
	}
}
