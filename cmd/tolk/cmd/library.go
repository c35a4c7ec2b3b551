package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/f3rmion/tolk/internal/library"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage saved texts",
	Long:    `Commands for listing, adding, importing and removing texts in your library.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved texts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLibraryList,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a text",
	Long: `Add a text to the library. The content is read from stdin when no
argument is given or the argument is "-".

Examples:
  tolk library add --title "Väder" "Det regnar i Stockholm."
  tolk library add --title Artikel --lang de < artikel.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLibraryAdd,
}

var libraryImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a text from a file or web page",
	Long: `Import a text file, or extract the article from an HTML file or a web
page.

Examples:
  tolk library import novell.txt
  tolk library import --url https://example.se/nyheter/artikel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLibraryImport,
}

var libraryRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a text",
	Args:    cobra.ExactArgs(1),
	RunE:    runLibraryRemove,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryImportCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)

	libraryAddCmd.Flags().StringP("title", "t", "", "title of the text")
	libraryAddCmd.Flags().StringP("lang", "l", "", "source language (default from config)")
	libraryImportCmd.Flags().String("url", "", "import from a web page instead of a file")
	libraryImportCmd.Flags().StringP("lang", "l", "", "source language (default from config)")
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	texts, err := store.List()
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		fmt.Println("Library is empty. Add a text with 'tolk library add' or 'tolk library import'.")
		return nil
	}

	for _, t := range texts {
		fmt.Printf("%s  %-4s %s  %s\n",
			t.ID,
			t.SourceLang,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			runewidth.Truncate(t.Title, 50, "…"),
		)
	}
	return nil
}

// sourceLanguage returns the --lang flag or the configured default.
func sourceLanguage(cmd *cobra.Command) (string, error) {
	lang, _ := cmd.Flags().GetString("lang")
	if lang != "" {
		return lang, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.SourceLanguage, nil
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	lang, err := sourceLanguage(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	content, err := readText(args, os.Stdin)
	if err != nil {
		return err
	}

	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	text, err := store.Create(title, content, lang)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q (%s)\n", text.Title, text.ID)
	return nil
}

func runLibraryImport(cmd *cobra.Command, args []string) error {
	rawURL, _ := cmd.Flags().GetString("url")
	if (rawURL == "") == (len(args) == 0) {
		return errors.New("give either a file or --url")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.SourceLanguage
	}

	var draft library.Draft
	if rawURL != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()
		draft, err = library.FromURL(ctx, http.DefaultClient, rawURL)
	} else {
		draft, err = library.FromFile(args[0])
	}
	if err != nil {
		return err
	}

	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	text, err := store.Create(draft.Title, draft.Content, lang)
	if err != nil {
		return err
	}
	words := len(strings.Fields(text.Content))
	fmt.Printf("Imported %q (%s), %d words\n", text.Title, text.ID, words)
	return nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(args[0]); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return fmt.Errorf("no text with id %s", args[0])
		}
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}
