package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/deck"
	"github.com/f3rmion/tolk/internal/export"
	"github.com/f3rmion/tolk/internal/logging"
	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var vocabCmd = &cobra.Command{
	Use:     "vocab",
	Aliases: []string{"vocabulary"},
	Short:   "Show or export your vocabulary",
	Long:    `Commands for listing and exporting the words you are learning.`,
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabulary entries",
	Long: `List vocabulary entries with their review schedule.

Examples:
  tolk vocab list
  tolk vocab list --lang sv
  tolk vocab list --format json`,
	Args: cobra.NoArgs,
	RunE: runVocabList,
}

var vocabExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export vocabulary to an Excel workbook",
	Long: `Write vocabulary entries to an .xlsx workbook.

Example:
  tolk vocab export -o vocabulary.xlsx`,
	Args: cobra.NoArgs,
	RunE: runVocabExport,
}

var vocabImportCmd = &cobra.Command{
	Use:   "import-anki <file.apkg>",
	Short: "Add the words of an Anki deck to your vocabulary",
	Long: `Read the notes of an Anki .apkg file and add each word to your
vocabulary. Words you are already learning are skipped.

Use --dry-run to see the deck's fields and the words that would be added.

Examples:
  tolk vocab import-anki svenska.apkg --lang sv
  tolk vocab import-anki hsk1.apkg --lang zh --word-field Hanzi --translation-field Meaning`,
	Args: cobra.ExactArgs(1),
	RunE: runVocabImport,
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabListCmd)
	vocabCmd.AddCommand(vocabExportCmd)
	vocabCmd.AddCommand(vocabImportCmd)

	vocabListCmd.Flags().StringP("lang", "l", "", "only entries in this language")
	vocabListCmd.Flags().StringP("format", "f", "table", "output format: table, json")
	vocabExportCmd.Flags().StringP("lang", "l", "", "only entries in this language")
	vocabExportCmd.Flags().StringP("output", "o", "vocabulary.xlsx", "output file")
	vocabImportCmd.Flags().StringP("lang", "l", "", "language of the words (default from config)")
	vocabImportCmd.Flags().String("word-field", "Front", "note field holding the word")
	vocabImportCmd.Flags().String("translation-field", "Back", "note field holding the translation")
	vocabImportCmd.Flags().Bool("dry-run", false, "list the words without adding them")
}

// fetchVocabulary returns the entries in lang, or all entries when lang is
// empty.
func fetchVocabulary(cmd *cobra.Command) ([]tolk.VocabularyEntry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	entries, err := newClient(cfg).Vocabulary(cmd.Context())
	if err != nil {
		return nil, err
	}

	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		return entries, nil
	}
	var out []tolk.VocabularyEntry
	for _, e := range entries {
		if strings.EqualFold(e.Language, lang) {
			out = append(out, e)
		}
	}
	return out, nil
}

func runVocabList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	entries, err := fetchVocabulary(cmd)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table":
		printTable(entries)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func printTable(entries []tolk.VocabularyEntry) {
	rows := make([][]string, len(entries))
	widths := make([]int, len(export.Columns))
	for i, h := range export.Columns {
		widths[i] = runewidth.StringWidth(h)
	}
	for i, e := range entries {
		rows[i] = export.Row(e)
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = runewidth.FillRight(c, widths[i])
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(export.Columns)
	for _, r := range rows {
		line(r)
	}
	fmt.Printf("\n%d entries\n", len(entries))
}

func runVocabExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	entries, err := fetchVocabulary(cmd)
	if err != nil {
		return err
	}

	if err := export.WriteXLSX(output, entries); err != nil {
		return err
	}
	fmt.Printf("Exported %d entries to %s\n", len(entries), output)
	return nil
}

func runVocabImport(cmd *cobra.Command, args []string) error {
	wordField, _ := cmd.Flags().GetString("word-field")
	translationField, _ := cmd.Flags().GetString("translation-field")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.SourceLanguage
	}
	lang = strings.ToLower(lang)

	pkg, err := deck.Open(args[0])
	if err != nil {
		return err
	}
	words := pkg.Words(wordField, translationField)

	if dryRun {
		fmt.Printf("Fields: %s\n\n", strings.Join(pkg.FieldNames(), ", "))
		for _, w := range words {
			fmt.Printf("  %s\t%s\n", w.Word, w.Translation)
		}
		fmt.Printf("\n%d words from %d notes\n", len(words), len(pkg.Notes))
		return nil
	}
	if len(words) == 0 {
		return fmt.Errorf("no words in field %q (fields: %s)", wordField, strings.Join(pkg.FieldNames(), ", "))
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.Component("import")

	client := newClient(cfg)
	ctx := cmd.Context()
	var added, skipped int
	for _, w := range words {
		_, err := client.LookupVocabulary(ctx, w.Word, lang)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, api.ErrNotFound):
			return err
		}
		if err := client.AddWord(ctx, w.Word, lang, w.Translation); err != nil {
			return fmt.Errorf("adding %s: %w", w.Word, err)
		}
		log.Debug().Str("word", w.Word).Str("language", lang).Msg("word imported")
		added++
	}

	log.Info().Str("deck", args[0]).Int("added", added).Int("skipped", skipped).Msg("deck imported")
	fmt.Printf("Added %d words, skipped %d already in your vocabulary\n", added, skipped)
	return nil
}
