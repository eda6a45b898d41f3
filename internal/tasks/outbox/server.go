package outbox

import (
	"context"
	"errors"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
)

// Runner 是可阻塞运行直至 ctx 取消的后台任务。
type Runner interface {
	Run(ctx context.Context) error
}

var _ transport.Server = (*Server)(nil)

// Server 将 Runner 挂到 kratos App 生命周期上：Start 阻塞运行，Stop 取消并等待退出。
type Server struct {
	runner Runner
	log    *log.Helper

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer 包装 Runner。
func NewServer(runner Runner, logger log.Logger) *Server {
	return &Server{runner: runner, log: log.NewHelper(logger)}
}

// Start 运行任务直到 ctx 取消或 Stop 被调用；取消视为正常退出。
func (s *Server) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	defer close(done)
	s.log.Info("outbox publisher started")
	err := s.runner.Run(runCtx)
	if err == nil || errors.Is(err, context.Canceled) {
		s.log.Info("outbox publisher stopped")
		return nil
	}
	return err
}

// Stop 通知任务退出并等待当前批次结束。
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
