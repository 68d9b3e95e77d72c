package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/daemon"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		foreground bool
		interval   time.Duration
		dev        bool
		pprofAddr  string
		enableOtel bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local bridge (HTTP API, change stream and notification poller)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			if !cmd.Flags().Changed("port") {
				port = e.cfg.ListenPort()
			}
			if !cmd.Flags().Changed("interval") {
				interval = e.cfg.Interval()
			}
			if !cmd.Flags().Changed("pprof") && e.cfg.Pprof && pprofAddr == "" {
				pprofAddr = "127.0.0.1:6060"
			}
			opts := daemon.StartOptions{
				Home:         e.home,
				Port:         port,
				BaseURL:      e.cfg.BaseURL(),
				PollInterval: interval,
				APIKey:       e.cfg.APIKey,
				Dev:          dev,
				PprofAddr:    pprofAddr,
				EnableOtel:   enableOtel,
				Logger:       e.log,
			}
			addr := (&url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port)}).String()

			if foreground {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving taskboard bridge on %s\n", addr)
				return daemon.StartForeground(cmd.Context(), opts)
			}
			pid, err := daemon.StartBackground(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "taskboard bridge started (pid %d)\n", pid)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API: %s  log: %s\n", addr, daemon.LogPath(e.home))
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Bridge listen port (default from config, 3549)")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (do not daemonize)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Notification poll interval (default from config, 30s)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Allow cross-origin browser clients (CORS)")
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "Enable pprof on address (e.g. 127.0.0.1:6060)")
	cmd.Flags().BoolVar(&enableOtel, "otel", true, "Enable OpenTelemetry metrics (Prometheus exporter at /metrics)")
	return cmd
}
