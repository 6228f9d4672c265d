package advshortcut

import (
	"os"

	"github.com/sjzar/advshortcut/internal/advshortcut"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	// windows only
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "config dir (default ~/.advshortcut)")
	rootCmd.PersistentPreRun = initLog

	rootCmd.Flags().StringVar(&executeShortcut, "execute-shortcut", "", "run the shortcut with this id at startup")
	rootCmd.Flags().BoolVar(&closeAfterExecution, "close-after-execution", false, "exit once the shortcut ran, 0 on success and 1 on failure")
	rootCmd.Flags().BoolVar(&showProgress, "show-progress", false, "show the progress view while the shortcut runs")
}

var (
	configDir           string
	executeShortcut     string
	closeAfterExecution bool
	showProgress        bool
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var rootCmd = &cobra.Command{
	Use:     "advshortcut",
	Short:   "advshortcut",
	Long:    `advshortcut runs named sequences of launch, kill, open and wait actions.`,
	Example: `advshortcut --execute-shortcut 0b5c... --close-after-execution`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PreRun: initTuiLog,
	Run:    Root,
}

func Root(cmd *cobra.Command, args []string) {
	// a closing request without a progress view needs no terminal UI
	if executeShortcut != "" && closeAfterExecution && !showProgress {
		initLog(cmd, args)
		runHeadless(executeShortcut, nil)
		return
	}

	m := advshortcut.New()
	req := advshortcut.Request{
		ShortcutID:          executeShortcut,
		CloseAfterExecution: closeAfterExecution,
		ShowProgress:        showProgress,
	}
	code, err := m.Run(configDir, req)
	if err != nil {
		log.Err(err).Msg("failed to run advshortcut")
	}
	if code != 0 {
		os.Exit(code)
	}
}
