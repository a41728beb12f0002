package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/logger"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"github.com/stemsi/exstem-enroll/internal/service"
	"golang.org/x/term"
)

func main() {
	var photoPath string
	flag.StringVar(&photoPath, "photo", "", "Path to the student's JPG or PNG photo (required)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx := context.Background()

	if photoPath == "" {
		fmt.Println("Error: -photo is required")
		flag.PrintDefaults()
		os.Exit(2)
	}
	photo, err := service.UploadFromPath(photoPath)
	if err != nil {
		fmt.Printf("Error: cannot read photo: %v\n", err)
		os.Exit(1)
	}

	// ─── Initialize Services ───────────────────────────────────────────
	store, pool, err := repository.OpenStudentStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open student store")
	}
	if pool != nil {
		defer pool.Close()
	}

	photos, err := service.NewStorageProvider(ctx, cfg, cfg.UploadDir, "/static/uploads/photos", "photos")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize photo storage")
	}

	authService := service.NewAuthService(cfg)
	mediaService := service.NewMediaService(photos, photos, cfg.MaxUploadBytes, log)
	studentService := service.NewStudentService(store, authService, mediaService, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Printf("Enter %s: ", label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	fmt.Println("=== Register Student ===")

	reg := &service.Registration{
		Name:     prompt("Name"),
		Email:    prompt("Email"),
		Course:   prompt("Course"),
		School:   prompt("School"),
		Semester: prompt("Semester"),
		RollNo:   prompt(fmt.Sprintf("Code (%d-%d)", service.RollNoMin, service.RollNoMax)),
		Photo:    photo,
	}
	for label, v := range map[string]string{"Name": reg.Name, "Email": reg.Email, "Course": reg.Course, "School": reg.School, "Semester": reg.Semester} {
		if v == "" {
			fmt.Printf("Error: %s is required\n", label)
			os.Exit(1)
		}
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	reg.Password = string(bytePassword)
	if reg.Password == "" {
		fmt.Println("Error: Password is required")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	student, err := studentService.Register(ctx, reg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRollNoNotNumeric):
			fmt.Println("Error: Code must be a number")
		case errors.Is(err, service.ErrRollNoOutOfRange):
			fmt.Printf("Error: Code must be between %d and %d\n", service.RollNoMin, service.RollNoMax)
		case errors.Is(err, repository.ErrDuplicateRollNo):
			fmt.Println("Error: This code is already used")
		case errors.Is(err, repository.ErrDuplicateEmail):
			fmt.Println("Error: Email already registered")
		case errors.Is(err, service.ErrPasswordTooLong):
			fmt.Println("Error: Password must be at most 72 bytes")
		case errors.Is(err, service.ErrUnsupportedFileType), errors.Is(err, service.ErrFileTooLarge):
			fmt.Printf("Error: %v\n", err)
		default:
			log.Fatal().Err(err).Msg("Failed to register student")
		}
		os.Exit(1)
	}

	fmt.Printf("\nSuccess! Student '%s' (%s) registered with code %d\n", student.Name, student.Email, student.RollNo)
}
