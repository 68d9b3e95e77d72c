package daemon

import (
	"log/slog"
	"net/http"

	_ "net/http/pprof"
)

// startPprof serves the DefaultServeMux profiling handlers on addr.
func startPprof(log *slog.Logger, addr string) {
	if addr == "" {
		return
	}
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Info("pprof server stopped", "addr", addr, "error", err)
		}
	}()
}
