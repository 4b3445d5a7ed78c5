package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) (configPath string) {
	t.Helper()
	dir := t.TempDir()
	knowledgePath := filepath.Join(dir, "dalydata.json")
	require.NoError(t, os.WriteFile(knowledgePath, []byte(`{
		"principal_desk": {"name": "Mr. Gurmeet Singh", "email": "principal@dalycollege.org"},
		"sports": {"cricket": "Nets open at 6 am"}
	}`), 0o600))

	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"env: production\nllm:\n  type: mock\nknowledge:\n  path: "+knowledgePath+"\n"), 0o600))
	return configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "chat", "ask", "search"} {
		require.Contains(t, names, want)
	}
}

func TestSearch(t *testing.T) {
	cfg := writeFixtures(t)

	out, err := run(t, "--config", cfg, "search", "principal", "email")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "principal_desk > email: principal@dalycollege.org")

	out, err = run(t, "--config", cfg, "search", "swimming")
	require.NoError(t, err)
	require.Contains(t, out, "no fragments match")
}

func TestSearchMissingKnowledge(t *testing.T) {
	cfg := writeFixtures(t)
	_, err := run(t, "--config", cfg, "search", "--knowledge", filepath.Join(t.TempDir(), "nope.json"), "principal")
	require.Error(t, err)
}

func TestAskLocal(t *testing.T) {
	cfg := writeFixtures(t)

	out, err := run(t, "--config", cfg, "ask", "--sources", "Who", "is", "the", "principal?")
	require.NoError(t, err)
	require.Contains(t, out, "mock: Who is the principal?")
	require.Contains(t, out, "Sources: principal_desk > name")
}

func TestAskRequiresQuestion(t *testing.T) {
	_, err := run(t, "ask")
	require.Error(t, err)
}
