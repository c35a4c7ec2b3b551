package cmd

import (
	"github.com/f3rmion/tolk/internal/tui"
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Review due vocabulary",
	Long: `Launch the TUI in a study session over the cards the scheduling
service reports as due.

Example:
  tolk study
  tolk study --lang sv`,
	RunE: runStudy,
}

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.Flags().StringP("lang", "l", "", "only review cards in this language")
}

func runStudy(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	return launch(tui.Options{StartView: tui.ViewStudy, StudyFilter: lang})
}
