package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mobile-next/autotype/commands"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Entry management commands",
	Long:  `Commands for managing entry secrets kept in the system keyring.`,
}

var entrySetPasswordCmd = &cobra.Command{
	Use:   "set-password [entry]",
	Short: "Store an entry password in the system keyring",
	Long: `Reads a password from standard input and stores it in the system keyring.
The entry uses it when its database record says "password = keyring".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}

		response := service.SetPasswordCommand(commands.SetPasswordRequest{
			Entry:    args[0],
			Password: strings.TrimRight(line, "\r\n"),
		})
		return printResponse(response)
	},
}

var entryDeletePasswordCmd = &cobra.Command{
	Use:   "delete-password [entry]",
	Short: "Remove an entry password from the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		return printResponse(service.DeletePasswordCommand(commands.DeletePasswordRequest{Entry: args[0]}))
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)

	entryCmd.AddCommand(entrySetPasswordCmd)
	entryCmd.AddCommand(entryDeletePasswordCmd)
}
