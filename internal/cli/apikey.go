package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/GITHIYON49/taskmanagementapp/internal/config"
	"github.com/spf13/cobra"
)

func newApikeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the API key that protects the local bridge",
	}
	cmd.AddCommand(newApikeyGenerateCmd())
	return cmd
}

func newApikeyGenerateCmd() *cobra.Command {
	var (
		envFile string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			key := hex.EncodeToString(b)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Generated API key:\n\n  %s\n\n", key)

			switch {
			case save:
				e := envFrom(cmd)
				e.cfg.APIKey = key
				if err := config.Save(e.home, e.cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				_, _ = fmt.Fprintf(out, "Saved to %s; restart the bridge to apply it.\n", config.Path(e.home))
			case envFile != "":
				if err := appendLine(envFile, "TASKBOARD_API_KEY="+key); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "Appended TASKBOARD_API_KEY to %s\n", envFile)
				_, _ = fmt.Fprintln(out, "Start the bridge with: taskboard serve --env-file "+envFile)
			default:
				_, _ = fmt.Fprintln(out, "Set TASKBOARD_API_KEY="+key+" for `taskboard serve`, or rerun with --save.")
			}
			_, _ = fmt.Fprintln(out, "Clients send it as header X-API-Key: <key> or query ?api_key=<key>")
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "Append TASKBOARD_API_KEY to this file (e.g. .env)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the key in config.yaml")
	return cmd
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
