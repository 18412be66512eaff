package cli

import (
	"fmt"

	"github.com/mobile-next/autotype/daemon"
	"github.com/mobile-next/autotype/server"
	"github.com/mobile-next/autotype/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the auto-type server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the auto-type server",
	Long: `Starts the JSON-RPC server. Websocket clients on /ws are offered
selections and notifications; the global shortcut is registered too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetBool/GetString cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		logFile, _ := cmd.Flags().GetString("log-file")

		if isDaemon && !daemon.IsChild() {
			// fail here rather than in a detached child nobody watches
			if err := checkListenAddr(cmd); err != nil {
				return err
			}

			_, err := daemon.Daemonize(logFile)
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned\n")
			return nil
		}

		service, err := newService()
		if err != nil {
			return err
		}

		cfg := service.Config()
		listenAddr := cmd.Flag("listen").Value.String()
		if listenAddr == "" {
			listenAddr = cfg.Listen
		}

		srv := server.New(service, server.Options{
			EnableCORS:       enableCORS || cfg.CORS,
			SelectionTimeout: cfg.SelectionTimeout,
		})
		shutdownHook.Register("server", func() error {
			srv.Shutdown()
			return nil
		})

		if service.Engine().Available() && cfg.GlobalShortcut != "" {
			if shortcut, err := registerShortcut(cmd.Context(), service); err != nil {
				utils.Warn("%v", err)
			} else {
				utils.Info("Global auto-type shortcut: %s", shortcut)
			}
		}

		watchDatabase(service)

		return srv.ListenAndServe(listenAddr)
	},
}

// checkListenAddr verifies the address server start would listen on is free.
func checkListenAddr(cmd *cobra.Command) error {
	addr := cmd.Flag("listen").Value.String()
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr = cfg.Listen
	}

	addr, err := server.NormalizeAddr(addr)
	if err != nil {
		return err
	}
	return utils.CheckListenAddr(addr)
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized auto-type server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			addr = cfg.Listen
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12100' or '0.0.0.0:13000'), overrides the settings file")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().String("log-file", "", "Daemon log file (default: discard)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default: the settings file's server.listen)")
}
