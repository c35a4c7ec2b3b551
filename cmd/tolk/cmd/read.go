package cmd

import (
	"errors"
	"fmt"

	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/tui"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Open a library text in the reader",
	Long: `Launch the TUI with a saved text open in the reader.

Use 'tolk library list' to find text IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	text, err := store.Get(args[0])
	store.Close()
	if errors.Is(err, library.ErrNotFound) {
		return fmt.Errorf("no text with id %s", args[0])
	}
	if err != nil {
		return err
	}

	return launch(tui.Options{OpenText: &text})
}
