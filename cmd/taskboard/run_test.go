package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRun_help(t *testing.T) {
	var out bytes.Buffer
	if code := Run(context.Background(), []string{"--help"}, &out, &out); code != 0 {
		t.Errorf("Run --help: got exit code %d", code)
	}
	if !strings.Contains(out.String(), "taskboard") {
		t.Errorf("help output: %q", out.String())
	}
}

func TestRun_version(t *testing.T) {
	var out bytes.Buffer
	if code := Run(context.Background(), []string{"--version"}, &out, &out); code != 0 {
		t.Errorf("Run --version: got exit code %d", code)
	}
	if strings.TrimSpace(out.String()) != Version {
		t.Errorf("version output: got %q, want %q", out.String(), Version)
	}
}

func TestRun_unknownFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run(context.Background(), []string{"--unknown-flag"}, &out, &errOut); code != 1 {
		t.Errorf("Run --unknown-flag: got exit code %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "taskboard:") {
		t.Errorf("stderr: %q", errOut.String())
	}
}

func TestRun_apikey(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(context.Background(), []string{"--home", t.TempDir(), "apikey", "generate"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("apikey generate: exit %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "TASKBOARD_API_KEY") {
		t.Errorf("output: %q", out.String())
	}
}
