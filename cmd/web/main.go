// Command web serves a landing page and rendered snapshots of the sky.
package main

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/raster"
	"github.com/tomz197/nightsky/internal/sky"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"

	defaultWidth  = 1280
	defaultHeight = 720
	defaultFrames = 60
)

//go:embed index.html
var htmlPage string

func main() {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	configPath := config.GetEnv("SKY_CONFIG", "")

	logger, err := config.NewLogger(os.Stderr, config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "log level: %v\n", err)
		os.Exit(1)
	}
	opts, _, err := config.LoadOptions(configPath, "")
	if err != nil {
		logger.Fatal("load options", "path", configPath, "err", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	logger.Info("Starting web server", "url", "http://"+addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(opts, sshHost, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func newMux(opts sky.Options, sshHost string, logger *log.Logger) *http.ServeMux {
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("GET /sky.png", &snapshotHandler{opts: opts, logger: logger})
	return mux
}

// snapshotHandler renders a sky image for
// GET /sky.png?w=&h=&frames=&profile=&seed=&thumb=WxH.
type snapshotHandler struct {
	opts   sky.Options
	logger *log.Logger
}

func (h *snapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err1 := intParam(q.Get("w"), defaultWidth)
	height, err2 := intParam(q.Get("h"), defaultHeight)
	frames, err3 := intParam(q.Get("frames"), defaultFrames)
	seed, err4 := strconv.ParseUint(cmp.Or(q.Get("seed"), "1"), 10, 64)
	thumbW, thumbH, err5 := sizeParam(q.Get("thumb"))
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := h.opts
	if name := q.Get("profile"); name != "" {
		p, err := sky.ParseProfile(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts = opts.Apply(sky.Patch{Profile: &p})
	}

	start := time.Now()
	surf, st, err := raster.Snapshot(opts, width, height, frames, seed, h.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if thumbW > 0 {
		err = imaging.Encode(w, surf.Thumbnail(thumbW, thumbH), imaging.PNG)
	} else {
		err = surf.Encode(w, "png")
	}
	if err != nil {
		h.logger.Error("encode snapshot", "err", err)
		return
	}
	h.logger.Debug("snapshot", "size", fmt.Sprintf("%dx%d", width, height), "frames", frames,
		"profile", opts.Profile, "seed", seed, "stars", st.Stars, "meteors", st.Meteors,
		"took", time.Since(start))
}

// sizeParam parses "WxH". An empty string gives 0, 0.
func sizeParam(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err := errors.Join(err1, err2); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 || w > raster.MaxSize || h > raster.MaxSize {
		return 0, 0, fmt.Errorf("size %q out of range", s)
	}
	return w, h, nil
}

func intParam(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
