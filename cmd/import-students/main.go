package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/logger"
	"github.com/stemsi/exstem-enroll/internal/repository"
)

// import-students copies records from a spreadsheet into the configured
// store, typically when moving from STORE_DRIVER=xlsx to postgres. Records
// whose email or code already exists are skipped.
func main() {
	var source string
	flag.StringVar(&source, "from", "data/students.xlsx", "Spreadsheet to import")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if cfg.StoreDriver == "xlsx" && cfg.DataFile == source {
		fmt.Println("Error: source and destination are the same spreadsheet")
		os.Exit(2)
	}

	if _, err := os.Stat(source); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	src, err := repository.NewXLSXStudentRepository(source, log)
	if err != nil {
		log.Fatal().Err(err).Str("file", source).Msg("Failed to open spreadsheet")
	}

	dst, pool, err := repository.OpenStudentStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open destination store")
	}
	if pool != nil {
		defer pool.Close()
	}

	students, err := src.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read spreadsheet")
	}

	fmt.Printf("=== Importing %d Students ===\n", len(students))

	var imported, skipped int
	for i := range students {
		s := students[i]
		err := dst.Create(ctx, &s)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, repository.ErrDuplicateEmail), errors.Is(err, repository.ErrDuplicateRollNo):
			skipped++
			log.Warn().Err(err).Str("email", s.Email).Int("roll_no", s.RollNo).Msg("Skipping existing student")
		default:
			log.Fatal().Err(err).Str("email", s.Email).Msg("Import failed")
		}
	}

	fmt.Printf("Done: %d imported, %d skipped\n", imported, skipped)
}
