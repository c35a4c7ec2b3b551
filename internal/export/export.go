// Package export writes the vocabulary as a spreadsheet.
package export

import (
	"fmt"
	"strconv"

	"github.com/f3rmion/tolk/internal/tolk"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the vocabulary.
const SheetName = "Vocabulary"

// Columns are the header cells, in order.
var Columns = []string{"Word", "Language", "Translation", "State", "Due", "Stability", "Difficulty"}

// Row formats an entry as the cells under Columns. Numbers are given to
// three decimals; a missing due date is blank.
func Row(e tolk.VocabularyEntry) []string {
	return []string{
		e.Word,
		e.Language,
		e.TranslationText(),
		e.State.String(),
		e.Due.Display(),
		strconv.FormatFloat(e.Stability, 'f', 3, 64),
		strconv.FormatFloat(e.Difficulty, 'f', 3, 64),
	}
}

// WriteXLSX writes entries to a new workbook at path, one row per entry
// under a header row.
func WriteXLSX(path string, entries []tolk.VocabularyEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.Word,
			e.Language,
			e.TranslationText(),
			e.State.String(),
			e.Due.Display(),
			e.Stability,
			e.Difficulty,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	numFmt := "0.000"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating number style: %w", err)
	}
	if len(entries) > 0 {
		last := fmt.Sprintf("G%d", len(entries)+1)
		if err := f.SetCellStyle(SheetName, "F2", last, style); err != nil {
			return fmt.Errorf("styling numbers: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
