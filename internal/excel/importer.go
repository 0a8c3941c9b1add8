// Package excel loads the phrase catalog from spreadsheets.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/pkg/models"
)

// Catalog is the slice of the repository the importer writes to
type Catalog interface {
	ListTopics(ctx context.Context) ([]models.Topic, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
	CreateTopic(ctx context.Context, name models.LocalizedName) (int64, error)
	CreateLevel(ctx context.Context, name models.LocalizedName) (int64, error)
	FindPhrase(ctx context.Context, topicID, levelID int64, textRU string) (*models.Phrase, error)
	CreatePhrase(ctx context.Context, phrase *models.Phrase) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath    string // Path to the Excel or CSV file
	TopicColumn string // Column with the topic name, "ru|en|uz" or a single name
	LevelColumn string // Column with the level name, same format as topics
	RUColumn    string // Column with the Russian text
	ENColumn    string // Column with the English text
	UZColumn    string // Column with the Uzbek text
	SheetName   string // Sheet to import; empty means the first sheet
	StartRow    int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TopicColumn: "A",
		LevelColumn: "B",
		RUColumn:    "C",
		ENColumn:    "D",
		UZColumn:    "E",
		StartRow:    2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	TopicsCreated  int
	LevelsCreated  int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer adds catalog rows that are not already present. Phrase ids are
// assigned in row order, which is the order phrases are served in.
type Importer struct {
	catalog Catalog
	config  ImportConfig
	topics  map[string]int64
	levels  map[string]int64
}

func NewImporter(catalog Catalog, config ImportConfig) *Importer {
	return &Importer{catalog: catalog, config: config}
}

// Import reads an .xlsx or .csv file depending on its extension
func (im *Importer) Import(ctx context.Context) (*ImportResult, error) {
	rows, err := im.readRows()
	if err != nil {
		return nil, err
	}

	if err := im.loadCatalog(ctx); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < im.config.StartRow || blank(row) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func (im *Importer) readRows() ([][]string, error) {
	if strings.ToLower(filepath.Ext(im.config.FilePath)) == ".csv" {
		return readCSV(im.config.FilePath)
	}
	return readExcel(im.config.FilePath, im.config.SheetName)
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (im *Importer) loadCatalog(ctx context.Context) error {
	topics, err := im.catalog.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("failed to get existing topics: %w", err)
	}
	levels, err := im.catalog.ListLevels(ctx)
	if err != nil {
		return fmt.Errorf("failed to get existing levels: %w", err)
	}

	im.topics = make(map[string]int64)
	for _, t := range topics {
		indexName(im.topics, t.LocalizedName, t.ID)
	}
	im.levels = make(map[string]int64)
	for _, l := range levels {
		indexName(im.levels, l.LocalizedName, l.ID)
	}
	return nil
}

func (im *Importer) processRow(ctx context.Context, row []string, result *ImportResult) error {
	cell := func(column string) string {
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	phrase := &models.Phrase{
		TextRU: cell(im.config.RUColumn),
		TextEN: cell(im.config.ENColumn),
		TextUZ: cell(im.config.UZColumn),
	}
	if phrase.TextRU == "" || phrase.TextEN == "" || phrase.TextUZ == "" {
		return errors.New("phrase needs ru, en and uz text")
	}

	topicName, err := parseName(cell(im.config.TopicColumn))
	if err != nil {
		return fmt.Errorf("topic: %w", err)
	}
	levelName, err := parseName(cell(im.config.LevelColumn))
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}

	var created bool
	phrase.TopicID, created, err = getOrCreate(ctx, im.topics, topicName, im.catalog.CreateTopic)
	if err != nil {
		return fmt.Errorf("failed to process topic: %w", err)
	}
	if created {
		result.TopicsCreated++
	}
	phrase.LevelID, created, err = getOrCreate(ctx, im.levels, levelName, im.catalog.CreateLevel)
	if err != nil {
		return fmt.Errorf("failed to process level: %w", err)
	}
	if created {
		result.LevelsCreated++
	}

	_, err = im.catalog.FindPhrase(ctx, phrase.TopicID, phrase.LevelID, phrase.TextRU)
	switch {
	case err == nil:
		result.Skipped++
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	if err := im.catalog.CreatePhrase(ctx, phrase); err != nil {
		return err
	}
	result.Created++
	return nil
}

// parseName accepts "ru|en|uz" or a single name used for every locale
func parseName(s string) (models.LocalizedName, error) {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) == 1 && parts[0] != "":
		return models.LocalizedName{NameRU: parts[0], NameEN: parts[0], NameUZ: parts[0]}, nil
	case len(parts) == 3 && parts[0] != "":
		return models.LocalizedName{NameRU: parts[0], NameEN: parts[1], NameUZ: parts[2]}, nil
	default:
		return models.LocalizedName{}, fmt.Errorf("invalid name %q", s)
	}
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func indexName(index map[string]int64, name models.LocalizedName, id int64) {
	for _, n := range []string{name.NameRU, name.NameEN, name.NameUZ} {
		if key := nameKey(n); key != "" {
			if _, taken := index[key]; !taken {
				index[key] = id
			}
		}
	}
}

func getOrCreate(ctx context.Context, index map[string]int64, name models.LocalizedName,
	create func(context.Context, models.LocalizedName) (int64, error)) (int64, bool, error) {
	if id, ok := index[nameKey(name.NameRU)]; ok {
		return id, false, nil
	}

	id, err := create(ctx, name)
	if err != nil {
		return 0, false, err
	}
	indexName(index, name, id)
	return id, true, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
