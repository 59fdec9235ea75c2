package config

import (
	"os"
	"path/filepath"
	"testing"
)

// testUnsetenv unsets key for the duration of the test.
func testUnsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}

func writeDotEnv(t *testing.T, dir, content string) {
	t.Helper()
	dataDir := filepath.Join(dir, RepoDataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, EnvFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDotEnv_FileNotExists(t *testing.T) {
	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Errorf("expected nil error for missing .env, got: %v", err)
	}
}

func TestLoadDotEnv_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeDotEnv(t, tmpDir, "TASKENV_TEST_ONE=value1\nTASKENV_TEST_TWO=value2\n")

	testUnsetenv(t, "TASKENV_TEST_ONE")
	testUnsetenv(t, "TASKENV_TEST_TWO")

	if err := LoadDotEnv(tmpDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("TASKENV_TEST_ONE"); got != "value1" {
		t.Errorf("TASKENV_TEST_ONE = %q, want %q", got, "value1")
	}
	if got := os.Getenv("TASKENV_TEST_TWO"); got != "value2" {
		t.Errorf("TASKENV_TEST_TWO = %q, want %q", got, "value2")
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	tmpDir := t.TempDir()
	writeDotEnv(t, tmpDir, "TASKENV_TEST_KEEP=from-file\n")

	t.Setenv("TASKENV_TEST_KEEP", "from-env")

	if err := LoadDotEnv(tmpDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("TASKENV_TEST_KEEP"); got != "from-env" {
		t.Errorf("TASKENV_TEST_KEEP = %q, want %q", got, "from-env")
	}
}

func TestLoadDotEnv_PinsRoot(t *testing.T) {
	tmpDir := t.TempDir()
	root := makeRoot(t, ".tasks")
	writeDotEnv(t, tmpDir, EnvRoot+"="+root+"\n")

	testUnsetenv(t, EnvRoot)

	if err := LoadDotEnv(tmpDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := NewManager(WithHome(t.TempDir()), WithWorkDir(t.TempDir()))
	rc := m.RootConfig()
	if rc.Path != root || rc.Source != SourceEnvironment {
		t.Errorf("RootConfig = %+v, want %q from ENVIRONMENT", rc, root)
	}
}
