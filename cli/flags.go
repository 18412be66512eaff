package cli

var (
	verbose bool

	// persistent overrides of the config file
	configPath   string
	platformName string
	databasePath string
	outputFormat string

	// entry the command acts on
	entryRef string

	// for type command
	typeSequence string
	typeWindow   uint64

	// for select command
	selectWindowTitle string
)
