package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/dto"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/repository"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/service"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/config"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/database"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/logger"
)

func main() {
	strategy := flag.String("strategy", "", "solving strategy: optimizer, backtracking or competing")
	timeLimit := flag.Duration("time-limit", 0, "overall solving budget, e.g. 45s")
	output := flag.String("o", "", "write the timetable CSV to this file instead of stdout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	svc := service.NewTimetableService(
		repository.NewTeacherRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewStudentRepository(db),
		repository.NewTeacherAssignmentRepository(db),
		repository.NewHourBlockerRepository(db),
		service.NewMemoryRunStore(cfg.Solver.RunTTL),
		nil,
		cfg.Grid,
		cfg.Solver,
		cfg.Jobs,
		validator.New(),
		logr,
	)

	req := dto.GenerateTimetableRequest{Strategy: *strategy}
	if *timeLimit > 0 {
		req.TimeLimitMs = int(timeLimit.Milliseconds())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Solver.TimeLimit+time.Minute)
	defer cancel()

	run, err := svc.Generate(ctx, req)
	if err != nil && run == nil {
		logr.Sugar().Fatalw("solving failed", "error", err)
	}

	if run.Status == models.RunStatusFailed {
		fmt.Fprintf(os.Stderr, "run failed: %s\n", run.Error)
		for _, issue := range run.Issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "strategy=%s penalty=%d placed=%d unplaced=%d elapsed=%s\n",
		run.Strategy, run.Penalty, len(run.Placements), run.Unplaced, run.Stats.Elapsed)
	for _, issue := range run.Issues {
		fmt.Fprintf(os.Stderr, "issue: %s\n", issue)
	}

	payload, _, _, err := svc.ExportRun(ctx, run.ID, "csv")
	if err != nil {
		logr.Sugar().Fatalw("export failed", "error", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			logr.Sugar().Fatalw("write output", "error", err)
		}
		return
	}
	os.Stdout.Write(payload)
}
