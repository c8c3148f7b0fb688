// Package server exposes the generated image over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ByLCY/furigana/logging"
	"github.com/ByLCY/furigana/pipeline"
)

// Generator produces a fresh image. *pipeline.Generator implements it.
type Generator interface {
	Generate(ctx context.Context) (*pipeline.Summary, error)
}

var _ Generator = (*pipeline.Generator)(nil)

// Options configures the handler.
type Options struct {
	// Generator is used in generate mode.
	Generator Generator
	// Static serves ArtifactPath from disk instead of generating.
	Static       bool
	ArtifactPath string
	Logger       *slog.Logger
}

type handler struct {
	opts Options
	log  *slog.Logger
}

// New returns the handler for GET /.
func New(opts Options) http.Handler {
	h := &handler{opts: opts, log: logging.OrNop(opts.Logger)}
	return logRequests(h.log, h)
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		data []byte
		err  error
	)
	if h.opts.Static {
		data, err = os.ReadFile(h.opts.ArtifactPath)
		if errors.Is(err, fs.ErrNotExist) {
			notFound(w)
			return
		}
	} else {
		data, err = h.generate(r.Context())
	}
	if err != nil {
		h.log.Error("serving image failed", "err", err)
		http.Error(w, fmt.Sprintf("生成图片失败: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *handler) generate(ctx context.Context) ([]byte, error) {
	if h.opts.Generator == nil {
		return nil, fmt.Errorf("未配置生成器")
	}
	sum, err := h.opts.Generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return sum.Bytes, nil
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("404 Not Found"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	return Serve(ctx, ln, handler, log)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, log *slog.Logger) error {
	log = logging.OrNop(log)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
