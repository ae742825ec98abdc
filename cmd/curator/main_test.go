package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/config"
	"curator/internal/daemon"
	"curator/internal/ipc"
	"curator/internal/logging"
	"curator/internal/review"
	"curator/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	transport  *testsupport.FakeTransport
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T, items []review.Item) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(cfg.Paths.DataDir, "config.toml")
	writeTestConfig(t, configPath, cfg)

	transport := &testsupport.FakeTransport{Items: items, GenerateText: "Looks like solid coverage, happy healing."}
	store := review.NewStore(cfg.Backend.PriorityForum)
	pipeline := review.NewPipeline(store, transport, logging.NewNop())

	d, err := daemon.New(cfg, pipeline, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := filepath.Join(cfg.Paths.DataDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logging.NewNop())
	if err != nil {
		cancel()
		d.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("unix sockets unavailable: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		transport:  transport,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[backend]\nbase_url = %q\npriority_forum = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Backend.BaseURL,
		cfg.Backend.PriorityForum,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket, "--config", configPath}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func queueItems() []review.Item {
	return []review.Item{
		{ID: "1", SourceForum: "Hairloss", Title: "Scar camouflage question", URL: "https://www.reddit.com/r/Hairloss/comments/1/"},
		{ID: "2", SourceForum: "SMPchat", Title: "Two sessions in", URL: "https://www.reddit.com/r/SMPchat/comments/2/"},
	}
}

func TestCLIListAndStatus(t *testing.T) {
	env := setupCLITestEnv(t, queueItems())

	out, _, err := runCLI(t, []string{"list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Two sessions in") || !strings.Contains(out, "Scar camouflage question") {
		t.Fatalf("list missing items: %q", out)
	}
	// The priority forum entry sorts first and carries the marker.
	if !strings.Contains(out, "*SMPchat") {
		t.Fatalf("priority forum not marked: %q", out)
	}
	if strings.Index(out, "Two sessions in") > strings.Index(out, "Scar camouflage question") {
		t.Fatalf("priority item not listed first: %q", out)
	}

	out, _, err = runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "running=yes") {
		t.Fatalf("status missing daemon state: %q", out)
	}
	if !strings.Contains(out, "SMPchat") {
		t.Fatalf("status missing priority forum: %q", out)
	}
}

func TestCLIReviewFlow(t *testing.T) {
	env := setupCLITestEnv(t, queueItems())

	out, _, err := runCLI(t, []string{"note", "2", "mention", "aftercare"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if !strings.Contains(out, "Noted 2") {
		t.Fatalf("unexpected note output: %q", out)
	}

	out, _, err = runCLI(t, []string{"generate", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Looks like solid coverage") {
		t.Fatalf("generate output missing draft: %q", out)
	}
	if env.transport.GeneratedNote("2") != "mention aftercare" {
		t.Fatalf("note not forwarded: %q", env.transport.GeneratedNote("2"))
	}

	if _, _, err := runCLI(t, []string{"edit", "2", "Edited", "reply"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("edit: %v", err)
	}

	out, _, err = runCLI(t, []string{"show", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Edited reply") || !strings.Contains(out, "mention aftercare") {
		t.Fatalf("show missing edited draft or note: %q", out)
	}

	out, _, err = runCLI(t, []string{"approve", "2", "--yes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(out, "Posted reply for 2") {
		t.Fatalf("unexpected approve output: %q", out)
	}
	if env.transport.ApprovedReply("2") != "Edited reply" {
		t.Fatalf("edited reply not posted: %q", env.transport.ApprovedReply("2"))
	}

	if _, _, err := runCLI(t, []string{"reject", "1", "--yes"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("reject: %v", err)
	}

	out, _, err = runCLI(t, []string{"list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("list after resolve: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("queue should be empty: %q", out)
	}
}

func TestCLIApproveWithoutDraftFails(t *testing.T) {
	env := setupCLITestEnv(t, queueItems())

	_, _, err := runCLI(t, []string{"approve", "1", "--yes"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("approve without a draft should fail")
	}

	out, _, listErr := runCLI(t, []string{"list"}, env.socketPath, env.configPath)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if !strings.Contains(out, "Scar camouflage question") {
		t.Fatalf("failed approve must leave the item queued: %q", out)
	}
}

func TestCLILogsCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	logPath := filepath.Join(env.cfg.Paths.LogDir, "curatord.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") || !strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("unexpected logs output: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout.String(), "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	cmd = newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}
