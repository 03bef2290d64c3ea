package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/api"
	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, depsOptions{withLLM: true})
		if err != nil {
			return err
		}
		defer d.Close()

		srv := d.cfg.Server
		if cmd.Flags().Changed("host") {
			srv.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			srv.Port, _ = cmd.Flags().GetInt("port")
		}
		if srv.Port <= 0 || srv.Port > 65535 {
			return fmt.Errorf("invalid port %d", srv.Port)
		}
		if d.llmErr != nil {
			d.log.Warn("serving without an LLM provider; generation returns fallback text", "error", d.llmErr)
		}

		sessions := session.NewManager(auth.NewPlaceholder())
		api.StartSessionPruner(cmd.Context(), sessions, srv.SessionIdle, d.log)

		h := api.NewHandler(d.service, sessions, d.log)
		return api.Serve(cmd.Context(), srv.Addr(), api.NewRouter(h, srv.CORSOrigins), d.log)
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "Interface to listen on (overrides server.host)")
	serveCmd.Flags().Int("port", 8080, "Port to listen on (overrides server.port)")
}
