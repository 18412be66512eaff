package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mobile-next/autotype/commands"
	"github.com/mobile-next/autotype/database"
	"github.com/mobile-next/autotype/types"
	"github.com/mobile-next/autotype/utils"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:   "type [entry]",
	Short: "Auto-type an entry into the active window",
	Long: `Types the entry's auto-type sequence (or --sequence) into the window
that is active once the initial delay passes. Typing stops if focus moves
to another window.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		response := service.TypeCommand(cmd.Context(), commands.TypeRequest{
			Entry:    args[0],
			Sequence: typeSequence,
			Window:   typeWindow,
		})
		return printResponse(response)
	},
}

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Auto-type whichever entry matches the active window",
	Long: `Matches the active window title against every entry. A single match is
typed at once; several matches are offered on the terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		chooser := commands.NewPromptChooser(ctx, service.Engine(), os.Stdin, os.Stderr)
		service.Engine().SetChooser(chooser)

		response := service.GlobalCommand(ctx)
		if response.Status == "ok" {
			if result, ok := response.Data.(commands.GlobalResponse); ok && result.Result != "typed" && result.Result != "skipped" {
				response = waitForChoice(ctx, chooser)
			}
		}
		return printResponse(response)
	},
}

func waitForChoice(ctx context.Context, chooser *commands.PromptChooser) *commands.CommandResponse {
	err := chooser.Wait(ctx)
	if errors.Is(err, commands.ErrSelectionCancelled) {
		return commands.NewSuccessResponse(commands.GlobalResponse{Result: "closed"})
	}
	if err != nil {
		return commands.NewErrorResponse(err)
	}
	return commands.NewSuccessResponse(commands.GlobalResponse{Result: "typed"})
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List window titles",
	Long:  `Lists the titles of open windows, handy when writing window associations.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		return printResponse(service.WindowsCommand())
	},
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run global auto-type whenever the shortcut is pressed",
	Long: `Registers the global auto-type shortcut and waits. Each press auto-types
into the active window; ambiguous matches are asked about on the terminal.
The database is reloaded when its file changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		shutdownHook.Register("listener", func() error {
			cancel()
			return nil
		})

		engine := service.Engine()
		engine.SetChooser(commands.NewPromptChooser(ctx, engine, os.Stdin, os.Stderr))

		shortcut, err := registerShortcut(ctx, service)
		if err != nil {
			return err
		}

		watchDatabase(service)

		utils.Info("Press %s to auto-type into the active window", shortcut)
		<-ctx.Done()
		return nil
	},
}

// registerShortcut binds the configured shortcut to global auto-type.
func registerShortcut(ctx context.Context, service *commands.Service) (types.Shortcut, error) {
	shortcut, err := types.ParseShortcut(service.Config().GlobalShortcut)
	if err != nil {
		return types.Shortcut{}, fmt.Errorf("invalid global shortcut %q: %w", service.Config().GlobalShortcut, err)
	}

	ok := service.Engine().RegisterGlobalShortcut(shortcut, func() {
		response := service.GlobalCommand(ctx)
		if response.Status == "error" {
			utils.Warn("Global auto-type failed: %s", response.Error)
			return
		}
		utils.Verbose("Global auto-type: %+v", response.Data)
	})
	if !ok {
		return types.Shortcut{}, fmt.Errorf("failed to register global shortcut %s", shortcut)
	}

	return shortcut, nil
}

// watchDatabase swaps in the database whenever its file changes.
func watchDatabase(service *commands.Service) {
	path := service.Config().Database
	watcher, err := database.Watch(path, database.DefaultReloadDebounce, func(db *database.Database) {
		service.SetDatabase(db)
		utils.Info("Reloaded database %s", path)
	})
	if err != nil {
		utils.Warn("Not watching database %s: %v", path, err)
		return
	}
	shutdownHook.Register("database watcher", watcher.Close)
}

func init() {
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(listenCmd)

	typeCmd.Flags().StringVar(&typeSequence, "sequence", "", "sequence to type instead of the entry's own")
	typeCmd.Flags().Uint64Var(&typeWindow, "window", 0, "only type while this window id is active")
}
