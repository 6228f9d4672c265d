package advshortcut

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sjzar/advshortcut/internal/advshortcut"
	"github.com/sjzar/advshortcut/pkg/util"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(exportCmd, importCmd, backupCmd, restoreCmd)
	dataCmd.PersistentFlags().StringVarP(&dataFormat, "format", "f", "", "json or yaml (default from the file extension)")
	backupCmd.Flags().BoolVarP(&backupList, "list", "l", false, "list backups instead of taking one")
}

var (
	dataFormat string
	backupList bool
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, import, back up and restore shortcuts",
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write shortcuts and groups to a file, or stdout",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		if err := advshortcut.New().CommandExport(configDir, path, dataFormat, os.Stdout); err != nil {
			log.Err(err).Msg("export failed")
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace shortcuts and groups with the content of a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := advshortcut.New().CommandImport(configDir, args[0], dataFormat); err != nil {
			log.Err(err).Msg("import failed")
		}
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Take a snapshot of the data",
	Run: func(cmd *cobra.Command, args []string) {
		if backupList {
			list, err := advshortcut.New().CommandBackups(configDir)
			if err != nil {
				log.Err(err).Msg("list backups failed")
				return
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tTIME")
			for _, b := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, util.ByteCountSI(b.Size), b.Time.Format("2006-01-02 15:04:05"))
			}
			w.Flush()
			return
		}
		name, err := advshortcut.New().CommandBackup(configDir)
		if err != nil {
			log.Err(err).Msg("backup failed")
			return
		}
		fmt.Println(name)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Restore a snapshot, the newest by default",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		restored, err := advshortcut.New().CommandRestore(configDir, name)
		if err != nil {
			log.Err(err).Msg("restore failed")
			return
		}
		fmt.Printf("restored %s\n", restored)
	},
}
