package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/romanize"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>",
	Short: "Look up a word in the dictionary and your vocabulary",
	Long: `Look up a word and display its:
  - Dictionary translation
  - Vocabulary entry and review schedule, if you are learning it
  - Pinyin reading, for Chinese words

Example:
  tolk lookup hund
  tolk lookup --lang zh 你好`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringP("lang", "l", "", "language of the word (default from config)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	word := args[0]
	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.SourceLanguage
	}
	lang = strings.ToLower(lang)

	client := newClient(cfg)
	ctx := cmd.Context()

	fmt.Printf("Looking up: %s (%s)\n\n", word, strings.ToUpper(lang))

	if reading, ok := romanize.NewReader().Reading(lang, word); ok {
		numbered := make([]string, 0)
		for _, s := range strings.Fields(reading) {
			numbered = append(numbered, romanize.Numbered(s))
		}
		fmt.Printf("  Reading:     %s (%s)\n", reading, strings.Join(numbered, " "))
	}

	translation, err := client.LookupDictionary(ctx, word, lang)
	switch {
	case errors.Is(err, api.ErrNotFound) || (err == nil && translation == ""):
		fmt.Println("  Dictionary:  (no translation)")
	case err != nil:
		return err
	default:
		fmt.Printf("  Dictionary:  %s\n", translation)
	}

	entry, err := client.LookupVocabulary(ctx, word, lang)
	if errors.Is(err, api.ErrNotFound) {
		fmt.Println("  Vocabulary:  not learning")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("  Vocabulary:  learning")
	if t := entry.TranslationText(); t != "" {
		fmt.Printf("  Saved as:    %s\n", t)
	}
	fmt.Printf("  State:       %s\n", entry.State)
	if due := entry.Due.Display(); due != "" {
		fmt.Printf("  Due:         %s\n", due)
	}
	fmt.Printf("  Stability:   %.3f\n", entry.Stability)
	fmt.Printf("  Difficulty:  %.3f\n", entry.Difficulty)

	return nil
}
