package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	testBinary     string
	testBinaryOnce sync.Once
	testBinaryErr  error
)

// buildTestBinary builds the central binary once for all tests
func buildTestBinary() (string, error) {
	testBinaryOnce.Do(func() {
		tmpBinary := filepath.Join(os.TempDir(), "central-test")
		cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			testBinaryErr = err
			testBinary = string(out)
			return
		}
		testBinary = tmpBinary
	})

	if testBinaryErr != nil {
		return "", testBinaryErr
	}
	return testBinary, nil
}

// TestVersionCommand tests the version command
func TestVersionCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	cmd := exec.Command(binary, "version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		t.Fatalf("version command failed: %v\nOutput: %s", err, output)
	}

	outputStr := string(output)
	expected := []string{
		"central version:",
		"Git commit:",
		"Build date:",
		"Go version:",
	}

	for _, exp := range expected {
		if !strings.Contains(outputStr, exp) {
			t.Errorf("version output missing %q:\n%s", exp, outputStr)
		}
	}
}

// TestHelpOutput tests that help lists the subcommands
func TestHelpOutput(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	cmd := exec.Command(binary, "--help")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("help command failed: %v\nOutput: %s", err, output)
	}

	outputStr := string(output)
	for _, exp := range []string{"serve", "version", "OData"} {
		if !strings.Contains(outputStr, exp) {
			t.Errorf("help output missing %q:\n%s", exp, outputStr)
		}
	}
}

// TestServeRejectsBadConfig tests that serve fails fast on an invalid
// configuration instead of binding a listener
func TestServeRejectsBadConfig(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	cmd := exec.Command(binary, "serve")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "CENTRAL_CACHE_BACKEND=postgres")

	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected serve to fail with invalid cache backend, got:\n%s", output)
	}

	if !strings.Contains(string(output), "cache.backend") {
		t.Errorf("expected config error in output, got:\n%s", output)
	}
}
