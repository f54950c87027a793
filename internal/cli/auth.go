package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/api"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/session"
)

// requestTimeout bounds a single login or logout round trip.
const requestTimeout = 30 * time.Second

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Open a session on a reflections server",
		Long: `Open a session on a reflections server.

The session is saved in ~/.config/reflections/sessions/, one file per server,
and reused by 'render --server' and 'edit --server'. Logging in again with the
same name reaches the same points and shards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), server, args[0])
		},
	}

	cmd.Flags().StringVar(&server, "server", defaultServer, "server URL")

	return cmd
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Close the saved session for a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogout(cmd.Context(), server)
		},
	}

	cmd.Flags().StringVar(&server, "server", defaultServer, "server URL")

	return cmd
}

func (c *CLI) runLogin(ctx context.Context, server, username string) error {
	client, err := api.New(server)
	if err != nil {
		return err
	}
	sessions, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	sp := startSpinner(ctx, os.Stderr, "Logging in...")
	res, err := client.Login(ctx, username)
	if err != nil {
		sp.fail("Login failed")
		return err
	}
	sp.stop()

	sess := &session.Session{
		ID:        res.SessionID,
		UserID:    res.UserID,
		Username:  res.Username,
		ExpiresAt: res.ExpiresAt,
		CreatedAt: time.Now(),
	}
	if err := sessions.SaveSession(ctx, client.Host(), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	printSuccess("Logged in as %s", StyleHighlight.Render(res.Username))
	printKeyValue("Server", server)
	printKeyValue("Expires", res.ExpiresAt.Local().Format("Jan 2, 2006 15:04"))
	c.Logger.Debug("session saved", "path", sessions.Path(client.Host()))
	printNextStep("Render it", "reflections render --server "+server+" -o mosaic.svg")
	return nil
}

func (c *CLI) runLogout(ctx context.Context, server string) error {
	sessions, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	client, err := newClient(ctx, server)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUnauthorized) {
			printInfo("Not logged in")
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := client.Logout(ctx); err != nil && !errors.Is(err, errors.ErrCodeUnauthorized) {
		printWarning("Server logout failed: %s", errors.UserMessage(err))
	}
	if err := sessions.DeleteSession(ctx, client.Host()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	printSuccess("Logged out")
	return nil
}

// newClient returns an API client for server carrying the saved session.
func newClient(ctx context.Context, server string) (*api.Client, error) {
	probe, err := api.New(server)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sess, err := sessions.GetSession(ctx, probe.Host())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeUnauthorized, "not logged in to %s (run 'reflections login' first)", server)
	}
	return api.New(server, api.WithSession(sess.ID))
}

// fetchInput downloads the user's working set and shards. A user without a
// stored working set gets the default one.
func fetchInput(ctx context.Context, client *api.Client) (mosaicInput, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	sp := startSpinner(ctx, os.Stderr, "Fetching mosaic...")
	defer sp.stop()

	ws, err := client.GetPoints(ctx)
	if errors.IsNotFound(err) {
		ws, err = mosaic.DefaultWorkingSet(), nil
	}
	if err != nil {
		return mosaicInput{}, err
	}
	shards, err := client.ListShards(ctx)
	if err != nil {
		return mosaicInput{}, err
	}
	return mosaicInput{Points: ws, Shards: shards}, nil
}
