package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestReadConfDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "conf:\n  host: 0.0.0.0\n"))

	c, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}
	if c.Conf.Host != "0.0.0.0" {
		t.Errorf("Expected host override, got %q", c.Conf.Host)
	}
	if c.Conf.SshPort != 23235 {
		t.Errorf("Expected default ssh port, got %d", c.Conf.SshPort)
	}
	if c.Conf.PageSize != 50 {
		t.Errorf("Expected page size 50, got %d", c.Conf.PageSize)
	}
	if c.Conf.MinReputation != 400 {
		t.Errorf("Expected min reputation 400, got %d", c.Conf.MinReputation)
	}
	if c.Conf.ApiTimeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", c.Conf.ApiTimeout)
	}
	if !c.Conf.RequireReputation {
		t.Error("Reputation gate should be on by default")
	}
}

func TestReadConfEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "conf:\n  api_url: http://api.local/v1/\n"))
	t.Setenv("LENSFORUM_HTTP_PORT", "8181")
	t.Setenv("LENSFORUM_REQUIRE_REPUTATION", "false")
	t.Setenv("LENSFORUM_API_TIMEOUT", "3s")
	t.Setenv("LENSFORUM_COMMUNITY", "0xc0ffee")

	c, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}
	if c.Conf.ApiURL != "http://api.local/v1" {
		t.Errorf("Trailing slash should be trimmed, got %q", c.Conf.ApiURL)
	}
	if c.Conf.HttpPort != 8181 {
		t.Errorf("Expected http port 8181, got %d", c.Conf.HttpPort)
	}
	if c.Conf.RequireReputation {
		t.Error("Expected reputation gate disabled by env")
	}
	if c.Conf.ApiTimeout != 3*time.Second {
		t.Errorf("Expected 3s timeout, got %v", c.Conf.ApiTimeout)
	}
	if c.Conf.Community != "0xc0ffee" {
		t.Errorf("Expected community from env, got %q", c.Conf.Community)
	}
}

func TestReadConfEnvCoversTuning(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "conf:\n  page_size: 0\n"))
	t.Setenv("LENSFORUM_STALE_TIME", "5s")
	t.Setenv("LENSFORUM_MAX_CONTEXT_DEPTH", "8")
	t.Setenv("LENSFORUM_API_RATE", "2.5")
	t.Setenv("LENSFORUM_API_BURST", "4")

	c, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}
	if c.Conf.StaleTime != 5*time.Second {
		t.Errorf("Expected 5s stale time, got %v", c.Conf.StaleTime)
	}
	if c.Conf.MaxContextDepth != 8 {
		t.Errorf("Expected context depth 8, got %d", c.Conf.MaxContextDepth)
	}
	if c.Conf.ApiRate != 2.5 || c.Conf.ApiBurst != 4 {
		t.Errorf("Expected api rate 2.5/4, got %v/%d", c.Conf.ApiRate, c.Conf.ApiBurst)
	}
	if c.Conf.PageSize != 50 {
		t.Errorf("Zero page size should fall back to 50, got %d", c.Conf.PageSize)
	}
}

func TestReadConfInvalidEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "conf: {}\n"))
	t.Setenv("LENSFORUM_SSH_PORT", "not-a-port")

	if _, err := ReadConf(); err == nil {
		t.Error("Expected error for invalid port")
	}
}

func TestReadConfMissingApiURL(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "conf:\n  api_url: \"\"\n"))

	if _, err := ReadConf(); err == nil {
		t.Error("Expected error when api_url is empty")
	}
}

func TestFindAccount(t *testing.T) {
	key := "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBob bob@host"
	c := &AppConfig{Accounts: []AccountConf{
		{Handle: "alice", Account: "0x1"},
		{Handle: "bob", Account: "0x2", PublicKey: key},
	}}

	acc, ok := c.FindAccount(PkToHash("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBob"))
	if !ok || acc.Handle != "bob" {
		t.Errorf("Expected bob, got %+v (found=%v)", acc, ok)
	}
	if _, ok := c.FindAccount(PkToHash("other")); ok {
		t.Error("Unknown key should not match")
	}

	acc, ok = c.FindAccountByHandle("ALICE")
	if !ok || acc.Account != "0x1" {
		t.Errorf("Expected alice by handle, got %+v", acc)
	}
}

func TestResolveFilePath(t *testing.T) {
	if got := ResolveFilePath("/etc/key.pem"); got != "/etc/key.pem" {
		t.Errorf("Absolute path should be kept, got %q", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ResolveFilePath("~/k.pem"); got != filepath.Join(home, "k.pem") {
		t.Errorf("Tilde should expand, got %q", got)
	}
	if got := ResolveFilePath("k.pem"); got != filepath.Join(home, ".config", Name, "k.pem") {
		t.Errorf("Relative path should resolve under config dir, got %q", got)
	}
}
