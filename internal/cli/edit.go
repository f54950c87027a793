package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/interact"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/store"
)

// editCommand creates the edit command, the interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var (
		server   string
		username string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit your mosaic in the terminal",
		Long: `Edit your mosaic in the terminal.

The mosaic is drawn in the terminal; hover a cell to see its shard and click
it (or select it with the arrow keys and press enter) to write or edit an
answer. Press p to place points and change the rotation count.

Without --server the editor stores data in the backend named in the
configuration file ([store] section) under --user. With --server it talks to
a running server using the session saved by 'reflections login'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), server, username, logFile)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "edit the mosaic stored on this server")
	cmd.Flags().StringVar(&username, "user", "local", "user name for local editing")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write editor logs to this file")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, server, username, logFile string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the editor; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, c.Logger.GetLevel()).WithPrefix("edit")

	var backend interact.Backend
	if server != "" {
		client, err := newClient(ctx, server)
		if err != nil {
			return err
		}
		backend = client
	} else {
		b, err := openBackends(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()
		sess := session.Local(username)
		backend = store.NewLocal(store.Instrument(b.store, cfg.Store.Backend), sess.UserID, storeLimits(cfg))
		logger.Info("editing locally", "user", username, "store", cfg.Store.Backend)
	}

	clk := &teaClock{}
	mcfg := cfg.MachineConfig()
	mcfg.Clock = clk
	mcfg.Logger = logger
	e := newEditor(ctx, backend, mcfg)

	p := tea.NewProgram(e, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	clk.send = p.Send

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("editor: %w", err)
	}
	printSuccess("Editor closed")
	return nil
}
