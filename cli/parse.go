package cli

import (
	"github.com/mobile-next/autotype/commands"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [sequence]",
	Short: "Compile a sequence and print its actions",
	Long: `Compiles an auto-type sequence without typing it. With --entry,
placeholders are resolved against that entry; secrets are masked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		response := service.ParseCommand(commands.ParseRequest{
			Sequence: args[0],
			Entry:    entryRef,
		})
		return printResponse(response)
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show which entries match a window title",
	Long: `Reports the entries that would auto-type into a window with the given
title, and the sequence each would use. Nothing is typed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		response := service.SelectCommand(commands.SelectRequest{
			Entry:       entryRef,
			WindowTitle: selectWindowTitle,
		})
		return printResponse(response)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(selectCmd)

	parseCmd.Flags().StringVar(&entryRef, "entry", "", "entry path or title used to resolve placeholders")

	selectCmd.Flags().StringVar(&entryRef, "entry", "", "only consider this entry")
	selectCmd.Flags().StringVar(&selectWindowTitle, "window", "", "window title to match (empty selects as a manual auto-type)")
}
