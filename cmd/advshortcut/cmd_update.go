package advshortcut

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sjzar/advshortcut/internal/advshortcut"
	"github.com/sjzar/advshortcut/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check-only", false, "only report whether an update is available")
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "install without asking")
}

var (
	updateCheckOnly bool
	updateYes       bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for and install a new release",
	Run: func(cmd *cobra.Command, args []string) {
		confirm := func(info *model.UpdateInfo) bool {
			if updateYes {
				return true
			}
			fmt.Printf("Install %s? [y/N] ", info.Version)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			return answer == "y" || answer == "yes"
		}
		if err := advshortcut.New().CommandUpdate(configDir, updateCheckOnly, confirm, os.Stdout); err != nil {
			log.Err(err).Msg("update failed")
		}
	},
}
