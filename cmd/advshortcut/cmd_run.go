package advshortcut

import (
	"os"

	"github.com/sjzar/advshortcut/internal/advshortcut"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runDataDir, "data-dir", "d", "", "data dir")
}

var runDataDir string

var runCmd = &cobra.Command{
	Use:   "run <shortcut-id>",
	Short: "Run a shortcut without the terminal UI",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var cmdConf map[string]any
		if runDataDir != "" {
			cmdConf = map[string]any{"data_dir": runDataDir}
		}
		runHeadless(args[0], cmdConf)
	},
}

// runHeadless runs id, prints its log and exits with the outcome.
func runHeadless(id string, cmdConf map[string]any) {
	code, err := advshortcut.New().CommandRun(configDir, cmdConf, id, os.Stdout)
	if err != nil {
		log.Err(err).Str("shortcut", id).Msg("run failed")
	}
	os.Exit(code)
}
