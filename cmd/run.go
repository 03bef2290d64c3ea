package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/app"
	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI with a
// fresh session that is discarded on exit.
func runApp(cmd *cobra.Command) error {
	d, err := buildDeps(cmd, depsOptions{logToFile: true, withLLM: true})
	if err != nil {
		return err
	}
	defer d.Close()
	d.warnIfNoLLM()

	sess := session.New(uuid.NewString(), auth.NewPlaceholder())
	d.log.Info("tui session started", "session_id", sess.ID())

	return app.Run(cmd.Context(), app.Deps{Service: d.service, Session: sess})
}
