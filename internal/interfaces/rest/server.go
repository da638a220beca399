package rest

import (
	"context"
	"net/http"
	"time"
)

// Server 对外看板 HTTP 服务
type Server struct {
	srv *http.Server
}

func NewServer(addr string, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe 阻塞直到服务退出，正常关闭时返回 nil
func (s *Server) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
