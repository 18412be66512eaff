package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mobile-next/autotype/commands"
	"github.com/mobile-next/autotype/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "autotype",
	Short: "Types credentials from a password database into other windows",
	Long: `Auto-type fills login forms by synthesizing keystrokes. Entries carry a
sequence such as {USERNAME}{TAB}{PASSWORD}{ENTER} and window associations
that decide which entry belongs to which window.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "json", "yaml":
			return nil
		}
		return fmt.Errorf("unsupported output format %q, expected json or yaml", outputFormat)
	},
}

// shutdownHook releases what commands acquire; main runs it on exit and on
// SIGINT/SIGTERM.
var shutdownHook = utils.NewShutdownHook()

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: user config dir/autotype/config.ini)")
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "auto-type platform, overrides the settings file")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "database file, overrides the settings file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "output format: json or yaml")
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// Shutdown runs the registered shutdown hooks.
func Shutdown() error {
	return shutdownHook.Shutdown()
}

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printYaml prints data with the same keys as its JSON form.
func printYaml(data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Fatal(err)
	}

	var generic interface{}
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		log.Fatal(err)
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		log.Fatal(err)
	}
	_ = encoder.Close()
}

// printResponse prints a command response in the selected format and turns
// an error response into a command error.
func printResponse(response *commands.CommandResponse) error {
	if outputFormat == "yaml" {
		printYaml(response)
	} else {
		printJson(response)
	}

	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
