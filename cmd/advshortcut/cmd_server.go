package advshortcut

import (
	"github.com/sjzar/advshortcut/internal/advshortcut"
	"github.com/sjzar/advshortcut/internal/advshortcut/conf"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverAddr, "addr", "a", conf.DefaultHTTPAddr, "server address")
	serverCmd.Flags().StringVarP(&serverDataDir, "data-dir", "d", "", "data dir")
	serverCmd.Flags().StringVarP(&serverStorage, "storage", "s", "", "storage backend (json, sqlite)")
}

var (
	serverAddr    string
	serverDataDir string
	serverStorage string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cmdConf := map[string]any{"http.addr": serverAddr}
		if serverDataDir != "" {
			cmdConf["data_dir"] = serverDataDir
		}
		if serverStorage != "" {
			cmdConf["storage.type"] = serverStorage
		}
		if err := advshortcut.New().CommandHTTPServer(configDir, cmdConf); err != nil {
			log.Err(err).Msg("failed to start server")
			return
		}
	},
}
