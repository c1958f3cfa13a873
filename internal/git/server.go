package git

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/cgi"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ryanmoran/bitcache/internal"
)

type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer creates and starts a Git HTTP server for the bare repositories beneath root.
// A repository at root/cache.git is served at http://<addr>/cache.git. The server
// uses the git-http-backend CGI of binary to handle Git protocol requests and enables
// both fetch and push. An addr with port 0 picks a free port. Returns a Server handle
// or an error if root is not a directory, the TCP listener cannot be created, or binary
// is not found. The server starts immediately in a background goroutine.
func NewServer(binary, root, addr string, w internal.Writer) (Server, error) {
	var err error
	root, err = filepath.Abs(root)
	if err != nil {
		return Server{}, fmt.Errorf("failed to resolve absolute path for %q: %w\nCheck that the path exists and is accessible", root, err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Server{}, fmt.Errorf("not a directory: %q: %w\nPass the directory that contains your bare repositories", root, internal.ErrInvalidInput)
	}

	git, err := exec.LookPath(binary)
	if err != nil {
		return Server{}, fmt.Errorf("git binary %q not found in PATH: %w\nInstall git or set BITCACHE_GIT", binary, err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return Server{}, fmt.Errorf("failed to listen on %q: %w\nAnother process may be using the address", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		h := &cgi.Handler{
			Path: git,
			Args: []string{
				"-c", "http.receivepack",
				"http-backend",
			},
			Dir: root,
			Env: []string{
				"GIT_PROJECT_ROOT=" + root,
				"PATH_INFO=" + r.URL.Path,
				"QUERY_STRING=" + r.URL.RawQuery,
				"REQUEST_METHOD=" + r.Method,
				"GIT_HTTP_EXPORT_ALL=true",
				"GIT_HTTP_ALLOW_PUSH=true",
			},
			Logger: log.New(w.GetWriter(), "[git server] ", 0),
			Stderr: os.Stderr,
		}

		h.ServeHTTP(rw, r)
	})

	server := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			w.Warningf("Git server error: %v", err)
		}
	}()

	return Server{
		listener: listener,
		server:   server,
	}, nil
}

// URL returns the base URL of the server. Append a repository name to get a remote.
func (s Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Close stops the Git HTTP server and closes the TCP listener.
// Returns an error if the server or listener cannot be closed cleanly.
func (s Server) Close() error {
	err := s.server.Close()
	if err != nil {
		return err
	}

	// Serve closes the listener on shutdown already.
	err = s.listener.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
