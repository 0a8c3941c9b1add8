package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/phrasebot/internal/database"
)

func newTestCatalog(t *testing.T) *database.Repository {
	t.Helper()

	db, err := database.Connect(database.Config{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewRepository(db)
}

var catalogRows = [][]string{
	{"topic", "level", "text_ru", "text_en", "text_uz"},
	{"Путешествия|Travel|Sayohat", "A1", "Где вокзал?", "Where is the station?", "Vokzal qayerda?"},
	{"Путешествия|Travel|Sayohat", "A1", "Сколько стоит билет?", "How much is the ticket?", "Chipta qancha turadi?"},
	{"", "", "", "", ""},
	{"Travel", "A2", "Я опоздал на поезд", "I missed the train", "Men poyezdga kechikdim"},
	{"Еда", "A1", "Я люблю яблоки", "", "Men olmani yaxshi ko'raman"},
}

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.csv")
	var data []byte
	for _, row := range rows {
		for i, c := range row {
			if i > 0 {
				data = append(data, ',')
			}
			data = append(data, []byte(`"`+c+`"`)...)
		}
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, c := range row {
			values[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImport(t *testing.T) {
	tests := []struct {
		name  string
		write func(t *testing.T, rows [][]string) string
	}{
		{"csv", writeCSV},
		{"xlsx", writeXLSX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			catalog := newTestCatalog(t)

			cfg := DefaultImportConfig()
			cfg.FilePath = tt.write(t, catalogRows)

			res, err := NewImporter(catalog, cfg).Import(ctx)
			require.NoError(t, err)

			assert.Equal(t, 4, res.TotalProcessed)
			assert.Equal(t, 3, res.Created)
			assert.Equal(t, 1, res.TopicsCreated)
			assert.Equal(t, 2, res.LevelsCreated)
			assert.Len(t, res.Errors, 1)

			topics, err := catalog.ListTopics(ctx)
			require.NoError(t, err)
			require.Len(t, topics, 1)
			assert.Equal(t, "Sayohat", topics[0].Name("uz"))

			levels, err := catalog.ListLevels(ctx)
			require.NoError(t, err)
			require.Len(t, levels, 2)

			first, err := catalog.FindPhrase(ctx, topics[0].ID, levels[0].ID, "Где вокзал?")
			require.NoError(t, err)
			second, err := catalog.FindPhrase(ctx, topics[0].ID, levels[0].ID, "Сколько стоит билет?")
			require.NoError(t, err)
			assert.Less(t, first.ID, second.ID)
			assert.Equal(t, "Vokzal qayerda?", first.TextUZ)

			again, err := NewImporter(catalog, cfg).Import(ctx)
			require.NoError(t, err)
			assert.Zero(t, again.Created)
			assert.Equal(t, 3, again.Skipped)
			assert.Zero(t, again.TopicsCreated)
		})
	}
}

func TestParseName(t *testing.T) {
	n, err := parseName(" Еда | Food | Ovqat ")
	require.NoError(t, err)
	assert.Equal(t, "Food", n.NameEN)

	n, err = parseName("B1")
	require.NoError(t, err)
	assert.Equal(t, "B1", n.NameUZ)

	for _, bad := range []string{"", "a|b", "|b|c"} {
		_, err := parseName(bad)
		assert.Error(t, err, bad)
	}
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 4, columnToIndex("e"))
	assert.Equal(t, 27, columnToIndex("AB"))
}
