package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ykarpov/go-vault-sync/internal/service"
	"github.com/ykarpov/go-vault-sync/internal/store"
	"github.com/ykarpov/go-vault-sync/internal/validators"
	"github.com/ykarpov/go-vault-sync/internal/workers"
	"github.com/ykarpov/go-vault-sync/models"
)

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vault-sync",
		Short:         "encrypted vault with optimistic sync",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.syncCommand(),
		a.agentCommand(),
		a.listCommand(),
		a.putCommand(),
		a.rmCommand(),
		a.versionCommand(),
	)

	return root
}

func (a *App) registerCommand() *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "create an account and a local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			creds, err := a.collectCredentials(ctx, login, true)
			if err != nil {
				return err
			}

			if err = a.services.SessionService.Register(ctx, creds.Login, creds.MasterPassword); err != nil {
				return err
			}

			a.printf("registered as %s\n", creds.Login)
			return nil
		},
	}
	cmd.Flags().StringVarP(&login, "login", "l", "", "account login")

	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "authenticate and store a local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			creds, err := a.collectCredentials(ctx, login, false)
			if err != nil {
				return err
			}

			if err = a.services.SessionService.Login(ctx, creds.Login, creds.MasterPassword); err != nil {
				return err
			}

			a.printf("logged in as %s\n", creds.Login)
			return nil
		},
	}
	cmd.Flags().StringVarP(&login, "login", "l", "", "account login")

	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "end the session; --force keeps unsynced local data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			variant := service.LogoutUserInitiated
			if force {
				variant = service.LogoutForced
			}

			err := a.services.SessionService.Logout(cmd.Context(), variant)
			if errors.Is(err, service.ErrDirtyVault) {
				return fmt.Errorf("%w: sync first or pass --force to keep local data", err)
			}
			if err != nil {
				return err
			}

			a.printf("logged out\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "log out without syncing, keeping local vault data")

	return cmd
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "show the local vault state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := a.services.SessionService.Resume(ctx)
			if errors.Is(err, store.ErrLocalSessionNotFound) {
				a.printf("not logged in\n")
				return nil
			}
			if err != nil {
				return err
			}

			a.printf("login:    %s\n", session.Login)

			state, err := a.storages.StateRepository.GetState(ctx)
			if errors.Is(err, store.ErrLocalStateNotFound) {
				a.printf("vault:    empty\n")
				return nil
			}
			if err != nil {
				return err
			}

			a.printf("revision: %d\n", state.Sync.LocalRevision)
			a.printf("dirty:    %t\n", state.Sync.Dirty)
			a.printf("edits:    %d\n", state.Sync.MutationSequence)
			return nil
		},
	}
}

func (a *App) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "run one sync attempt now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := a.unlock(ctx); err != nil {
				return err
			}

			outcome, err := a.syncOnce(ctx)
			if err != nil {
				return err
			}

			a.printf("sync: %s\n", outcome)
			return nil
		},
	}
}

func (a *App) agentCommand() *cobra.Command {
	var interval = a.cfg.Sync.Interval

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "sync periodically until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := a.unlock(ctx); err != nil {
				return err
			}

			a.printf("syncing every %s; Ctrl-C to stop\n", interval)
			workers.NewWorkers(&syncWorker{job: a.services.SyncJob, interval: interval}).Run(ctx)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", interval, "time between sync attempts")

	return cmd
}

func (a *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "print the rows of a vault table as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.unlock(ctx); err != nil {
				return err
			}

			snapshot, err := a.services.VaultService.Snapshot(ctx)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(snapshot.Tables[args[0]], "", "  ")
			if err != nil {
				return err
			}

			a.printf("%s\n", encoded)
			return nil
		},
	}
}

func (a *App) putCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <table> <column=value>...",
		Short: "insert or replace a vault row",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			row, err := parseColumns(args[1:])
			if err != nil {
				return err
			}

			input := validators.RowInput{Table: args[0], Row: row}
			if err = a.rowValidator.Validate(ctx, input); err != nil {
				return err
			}

			if err = a.unlock(ctx); err != nil {
				return err
			}

			if err = a.services.VaultService.PutRow(ctx, input.Table, input.Row); err != nil {
				return err
			}

			a.printf("stored row in %s\n", input.Table)
			return nil
		},
	}
}

func (a *App) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <table> <column=value>...",
		Short: "tombstone the row matching the given key columns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			key, err := parseColumns(args[1:])
			if err != nil {
				return err
			}

			input := validators.RowInput{Table: args[0], Row: key}
			if err = a.rowValidator.Validate(ctx, input); err != nil {
				return err
			}

			if err = a.unlock(ctx); err != nil {
				return err
			}

			if err = a.services.VaultService.DeleteRow(ctx, input.Table, input.Row); err != nil {
				return err
			}

			a.printf("removed row from %s\n", input.Table)
			return nil
		},
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Run: func(_ *cobra.Command, _ []string) {
			a.printf("Build version: %s\n", a.buildInfo.BuildVersion())
			a.printf("Build date: %s\n", a.buildInfo.BuildDate())
			a.printf("Build commit: %s\n", a.buildInfo.BuildCommit())
		},
	}
}

// collectCredentials assembles login material from the --login flag, the
// stored session, and an interactive password prompt, then validates it.
// confirm asks for the password twice, for registration.
func (a *App) collectCredentials(ctx context.Context, login string, confirm bool) (validators.Credentials, error) {
	var creds validators.Credentials

	if login == "" {
		session, err := a.services.SessionService.Resume(ctx)
		if err == nil {
			login = session.Login
		}
	}
	if login == "" {
		var err error
		if login, err = promptLine(a.out, "login: "); err != nil {
			return creds, err
		}
	}

	password, err := promptPassword(a.out, "master password: ")
	if err != nil {
		return creds, err
	}
	if confirm {
		repeat, err := promptPassword(a.out, "repeat master password: ")
		if err != nil {
			return creds, err
		}
		if password != repeat {
			return creds, errors.New("passwords do not match")
		}
	}

	creds = validators.Credentials{Login: login, MasterPassword: password}
	return creds, a.credentialsValidator.Validate(ctx, creds)
}

// unlock makes the process able to decrypt the vault: it resumes the
// stored session for the login and re-authenticates with the master
// password to derive the key.
func (a *App) unlock(ctx context.Context) error {
	session, err := a.services.SessionService.Resume(ctx)
	if errors.Is(err, store.ErrLocalSessionNotFound) {
		return errors.New("not logged in: run `vault-sync login` first")
	}
	if err != nil {
		return err
	}

	password, err := promptPassword(a.out, "master password: ")
	if err != nil {
		return err
	}

	creds := validators.Credentials{Login: session.Login, MasterPassword: password}
	if err = a.credentialsValidator.Validate(ctx, creds); err != nil {
		return err
	}

	return a.services.SessionService.Login(ctx, creds.Login, creds.MasterPassword)
}

// syncOnce runs one coordinator attempt over the persisted state and
// stores the advanced state when the attempt changed it.
func (a *App) syncOnce(ctx context.Context) (service.SyncOutcome, error) {
	state, err := a.storages.StateRepository.GetState(ctx)
	if errors.Is(err, store.ErrLocalStateNotFound) {
		state = models.LocalVaultState{}
	} else if err != nil {
		return service.OutcomeNone, err
	}

	next, outcome, err := a.services.SyncService.Attempt(ctx, state)
	if err != nil {
		return outcome, err
	}

	switch outcome {
	case service.OutcomeOffline, service.OutcomeUpToDate:
		return outcome, nil
	}

	return outcome, a.storages.StateRepository.SaveState(ctx, next)
}

// parseColumns turns "column=value" arguments into a row. Values are kept
// as strings; the merge engine only interprets the stamped columns.
func parseColumns(args []string) (models.Row, error) {
	row := make(models.Row, len(args))
	for _, arg := range args {
		column, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		row[column] = value
	}
	return row, nil
}
