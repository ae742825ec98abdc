package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"curator/internal/daemon"
	"curator/internal/ipc"
	"curator/internal/logging"
	"curator/internal/review"
	"curator/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()

	transport := &testsupport.FakeTransport{
		Items: []review.Item{
			{ID: "2", SourceForum: "Hairloss", Title: "Other"},
			{ID: "1", SourceForum: "SMPchat", Title: "Session pics"},
		},
		GenerateText: "Generated reply text.",
	}
	store := review.NewStore(cfg.Backend.PriorityForum)
	pipeline := review.NewPipeline(store, transport, logger)
	d, err := daemon.New(cfg, pipeline, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.DataDir, "curatord.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running || status.ItemCount != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.PriorityForum != "SMPchat" {
		t.Fatalf("priority forum not surfaced: %q", status.PriorityForum)
	}

	list, err := client.QueueList()
	if err != nil {
		t.Fatalf("QueueList RPC failed: %v", err)
	}
	if len(list.Items) != 2 || list.Items[0].ID != "1" {
		t.Fatalf("priority item should lead the queue: %+v", list.Items)
	}
	if !list.Items[0].Priority || list.Items[1].Priority {
		t.Fatalf("priority flags wrong: %+v", list.Items)
	}

	if err := client.SetNote("1", "mention fading"); err != nil {
		t.Fatalf("SetNote RPC failed: %v", err)
	}
	expanded, err := client.ToggleExpand("1")
	if err != nil || !expanded {
		t.Fatalf("ToggleExpand RPC failed: %v %v", expanded, err)
	}

	genResp, err := client.Generate("1")
	if err != nil {
		t.Fatalf("Generate RPC failed: %v", err)
	}
	if genResp.Reply != "Generated reply text." {
		t.Fatalf("unexpected generated reply: %q", genResp.Reply)
	}
	if got := transport.GeneratedNote("1"); got != "mention fading" {
		t.Fatalf("note not forwarded to backend: %q", got)
	}

	if err := client.SetReply("1", "edited reply"); err != nil {
		t.Fatalf("SetReply RPC failed: %v", err)
	}
	show, err := client.QueueShow("1")
	if err != nil {
		t.Fatalf("QueueShow RPC failed: %v", err)
	}
	if show.Entry.Reply != "edited reply" || show.Entry.Note != "mention fading" || !show.Entry.Expanded {
		t.Fatalf("entry state not round-tripped: %+v", show.Entry)
	}

	if err := client.Approve("1"); err != nil {
		t.Fatalf("Approve RPC failed: %v", err)
	}
	if got := transport.ApprovedReply("1"); got != "edited reply" {
		t.Fatalf("edited reply not posted: %q", got)
	}

	if err := client.Reject("2"); err != nil {
		t.Fatalf("Reject RPC failed: %v", err)
	}
	status, err = client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.ItemCount != 0 {
		t.Fatalf("queue should be empty after approve and reject: %+v", status)
	}

	if _, err := client.QueueShow("ghost"); err == nil {
		t.Fatal("QueueShow for unknown id should fail")
	}
}
