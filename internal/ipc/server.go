package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"log/slog"

	"curator/internal/daemon"
	"curator/internal/logging"
)

// Server exposes session control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Curator", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart curatord if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually before the next start"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(s.logger, "ipc")
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.SocketPath = status.SocketPath
	resp.LockPath = status.LockFilePath
	resp.PriorityForum = status.PriorityForum
	resp.ItemCount = status.ItemCount
	resp.DraftStats = status.DraftStats
	resp.LastRefresh = formatTime(status.LastRefresh)
	resp.LastError = status.LastError
	return nil
}

func (s *service) QueueList(_ QueueListRequest, resp *QueueListResponse) error {
	entries := s.daemon.Queue()
	resp.Items = make([]QueueEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Items = append(resp.Items, FromEntry(entry))
	}
	return nil
}

func (s *service) QueueShow(req QueueShowRequest, resp *QueueShowResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("queue show requires an id")
	}
	entry, err := s.daemon.Entry(req.ID)
	if err != nil {
		return err
	}
	resp.Entry = FromEntry(entry)
	return nil
}

func (s *service) Refresh(_ RefreshRequest, resp *RefreshResponse) error {
	if err := s.daemon.Refresh(s.ctx); err != nil {
		return err
	}
	resp.ItemCount = s.daemon.Status().ItemCount
	return nil
}

func (s *service) SetNote(req SetNoteRequest, resp *SetNoteResponse) error {
	if err := s.daemon.SetNote(req.ID, req.Text); err != nil {
		return err
	}
	s.log().Debug("note updated", logging.String(logging.FieldItemID, req.ID))
	return nil
}

func (s *service) SetReply(req SetReplyRequest, resp *SetReplyResponse) error {
	if err := s.daemon.SetReply(req.ID, req.Text); err != nil {
		return err
	}
	s.log().Debug("reply edited", logging.String(logging.FieldItemID, req.ID))
	return nil
}

func (s *service) ToggleExpand(req ToggleExpandRequest, resp *ToggleExpandResponse) error {
	expanded, err := s.daemon.ToggleExpand(req.ID)
	if err != nil {
		return err
	}
	resp.Expanded = expanded
	return nil
}

func (s *service) Generate(req GenerateRequest, resp *GenerateResponse) error {
	if err := s.daemon.Generate(s.ctx, req.ID); err != nil {
		return err
	}
	entry, err := s.daemon.Entry(req.ID)
	if err != nil {
		// The item can vanish between generation and readback when a
		// concurrent refresh drops it; the draft is gone with it.
		return nil
	}
	resp.Reply = entry.Item.Reply
	return nil
}

func (s *service) Approve(req ApproveRequest, resp *ApproveResponse) error {
	return s.daemon.Approve(s.ctx, req.ID)
}

func (s *service) Reject(req RejectRequest, resp *RejectResponse) error {
	return s.daemon.Reject(s.ctx, req.ID)
}

func (s *service) PostDirect(req PostDirectRequest, resp *PostDirectResponse) error {
	return s.daemon.PostDirect(s.ctx, req.ID)
}
