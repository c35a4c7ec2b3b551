package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/logging"
	"github.com/f3rmion/tolk/internal/render"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate text and print aligned sentences",
	Long: `Translate text sentence by sentence and print each sentence above its
translation. Aligned words share a color.

Pass "-" to read the text from stdin.

Example:
  tolk translate "Hunden äter fisk."
  tolk translate --from de --to en - < artikel.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().String("from", "", "source language (default from config)")
	translateCmd.Flags().String("to", "", "target language (default from config)")
	translateCmd.Flags().Bool("no-color", false, "do not color aligned words")
	translateCmd.Flags().IntP("width", "w", 80, "wrap lines at this width")
}

// readText joins args, or reads stdin when the only arg is "-".
func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	text, err := readText(args, os.Stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to translate")
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	noColor, _ := cmd.Flags().GetBool("no-color")
	width, _ := cmd.Flags().GetInt("width")
	if from == "" {
		from = cfg.SourceLanguage
	}
	if to == "" {
		to = cfg.TargetLanguage
	}

	client := newClient(cfg)
	tr, err := client.Translate(cmd.Context(), api.TranslateRequest{
		Text:           text,
		SourceLanguage: from,
		TargetLanguage: to,
		SplitSentences: true,
		MarkWords:      true,
	})
	if err != nil {
		return err
	}

	doc := render.NewDocument(tr, render.Options{
		Language: strings.ToLower(from),
		Palette:  cfg.AlignPalette(),
		Service:  client,
		Logger:   logging.Component("translate"),
	})
	doc.SetToggles(render.Toggles{ShowTranslation: true, ColorMatching: !noColor})

	if fallback, ok := doc.Fallback(); ok {
		fmt.Println(fallback)
		return nil
	}

	for i := range doc.Sentences() {
		layout := doc.Layout(i)
		fmt.Println(render.Line(layout.SourceWords(-1), width))
		fmt.Println(render.Line(layout.TargetWords(), width))
		fmt.Println()
	}
	return nil
}
