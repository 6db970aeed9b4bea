// Command seed loads the ingredient and tag catalogues from CSV files.
//
// Ingredient rows are "name,measurement_unit"; tag rows are
// "name,color,slug". Rows already present in the database are skipped, so
// the command is safe to re-run.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/foodgramapp/foodgram/internal/apperror"
	"github.com/foodgramapp/foodgram/internal/model"
	sqliteRepo "github.com/foodgramapp/foodgram/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/foodgram.db", "path to the SQLite database")
	ingredientsPath := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	tagsPath := flag.String("tags", "", "CSV file with name,color,slug rows")
	adminEmail := flag.String("admin", "", "email of a registered user to promote to admin")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *ingredientsPath == "" && *tagsPath == "" && *adminEmail == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -ingredients, -tags and/or -admin")
		flag.Usage()
		os.Exit(2)
	}

	db, err := sqliteRepo.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if *ingredientsPath != "" {
		added, skipped, err := seedIngredients(ctx, db, *ingredientsPath)
		if err != nil {
			logger.Error("seeding ingredients failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("ingredients seeded", slog.Int("added", added), slog.Int("skipped", skipped))
	}

	if *tagsPath != "" {
		added, skipped, err := seedTags(ctx, db, *tagsPath)
		if err != nil {
			logger.Error("seeding tags failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("tags seeded", slog.Int("added", added), slog.Int("skipped", skipped))
	}

	if *adminEmail != "" {
		user, err := db.GetUserByEmail(ctx, *adminEmail)
		if err != nil {
			logger.Error("admin promotion failed", slog.String("email", *adminEmail), slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := db.SetUserAdmin(ctx, user.ID, true); err != nil {
			logger.Error("admin promotion failed", slog.String("email", *adminEmail), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("user promoted to admin", slog.String("email", *adminEmail))
	}
}

func seedIngredients(ctx context.Context, db *sqliteRepo.DB, path string) (added, skipped int, err error) {
	err = readCSV(path, 2, func(record []string) error {
		ingredient := &model.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		}
		if err := db.CreateIngredient(ctx, ingredient); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				skipped++
				return nil
			}
			return err
		}
		added++
		return nil
	})
	return added, skipped, err
}

func seedTags(ctx context.Context, db *sqliteRepo.DB, path string) (added, skipped int, err error) {
	err = readCSV(path, 3, func(record []string) error {
		tag := &model.Tag{
			Name:  record[0],
			Color: record[1],
			Slug:  record[2],
		}
		if err := db.CreateTag(ctx, tag); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				skipped++
				return nil
			}
			return err
		}
		added++
		return nil
	})
	return added, skipped, err
}

// readCSV streams records from path, calling fn for each row with exactly
// fields columns.
func readCSV(path string, fields int, fn func(record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}
