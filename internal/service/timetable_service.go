package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/dto"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/scheduler"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/config"
	appErrors "github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/errors"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/export"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/jobs"
)

type teacherLister interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type subjectLister interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type enrollmentLoader interface {
	Enrollment(ctx context.Context) (models.Enrollment, error)
}

type assignmentLister interface {
	ListAll(ctx context.Context) ([]models.TeacherAssignment, error)
}

type blockerLoader interface {
	Load(ctx context.Context, days, periods int) (*models.HourBlocker, error)
}

type solveObserver interface {
	ObserveSolve(strategy, status string, penalty int, duration time.Duration)
}

// TimetableService loads school data, runs a solving strategy and stores the
// result for retrieval and export.
type TimetableService struct {
	teachers    teacherLister
	subjects    subjectLister
	students    enrollmentLoader
	assignments assignmentLister
	blockers    blockerLoader

	store   RunStore
	metrics solveObserver
	queue   *jobs.Queue

	grid      scheduler.Grid
	gridCfg   config.GridConfig
	solverCfg config.SolverConfig

	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires the solving pipeline.
func NewTimetableService(
	teachers teacherLister,
	subjects subjectLister,
	students enrollmentLoader,
	assignments assignmentLister,
	blockers blockerLoader,
	store RunStore,
	metrics solveObserver,
	gridCfg config.GridConfig,
	solverCfg config.SolverConfig,
	jobsCfg config.JobsConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemoryRunStore(solverCfg.RunTTL)
	}

	s := &TimetableService{
		teachers:    teachers,
		subjects:    subjects,
		students:    students,
		assignments: assignments,
		blockers:    blockers,
		store:       store,
		metrics:     metrics,
		grid:        scheduler.Grid{Days: gridCfg.Days, PeriodsPerDay: gridCfg.PeriodsPerDay},
		gridCfg:     gridCfg,
		solverCfg:   solverCfg,
		validator:   validate,
		logger:      logger,
	}
	s.queue = jobs.NewQueue("timetable", s.processJob, jobs.QueueConfig{
		Workers:    jobsCfg.Workers,
		BufferSize: jobsCfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the async generation workers.
func (s *TimetableService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the async generation workers.
func (s *TimetableService) Stop() {
	s.queue.Stop()
}

// Generate runs a solving run synchronously. The run is stored either way;
// the returned error classifies input-invalid and no-solution outcomes.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*models.TimetableRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	run := s.newRun(req)
	err := s.solve(ctx, run, req)
	if saveErr := s.store.Save(ctx, run); saveErr != nil {
		s.logger.Error("store run", zap.String("run_id", run.ID), zap.Error(saveErr))
	}
	return run, err
}

// GenerateAsync enqueues a solving run and returns immediately.
func (s *TimetableService) GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*models.TimetableRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	run := s.newRun(req)
	if err := s.store.Save(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store run")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: "generate", Payload: req}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue run")
	}
	return run, nil
}

// GetRun returns a stored run by ID.
func (s *TimetableService) GetRun(ctx context.Context, id string) (*models.TimetableRun, error) {
	run, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load run")
	}
	return run, nil
}

// ExportRun renders a finished run as CSV or PDF.
func (s *TimetableService) ExportRun(ctx context.Context, id, format string) ([]byte, string, string, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	if run.Status == models.RunStatusPending || run.Status == models.RunStatusRunning {
		return nil, "", "", appErrors.ErrRunPending
	}
	if run.Status == models.RunStatusFailed {
		return nil, "", "", appErrors.Clone(appErrors.ErrConflict, "run did not produce a timetable")
	}

	table := s.renderTable(run)
	switch format {
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return payload, "text/csv", fmt.Sprintf("timetable-%s.csv", run.ID), nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(table, "Weekly Timetable")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return payload, "application/pdf", fmt.Sprintf("timetable-%s.pdf", run.ID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *TimetableService) newRun(req dto.GenerateTimetableRequest) *models.TimetableRun {
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.solverCfg.Strategy
	}
	return &models.TimetableRun{
		ID:        uuid.NewString(),
		Status:    models.RunStatusPending,
		Strategy:  strategy,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *TimetableService) processJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}

	run, err := s.store.Get(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	run.Status = models.RunStatusRunning
	if err := s.store.Save(ctx, run); err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	solveErr := s.solve(ctx, run, req)
	if err := s.store.Save(ctx, run); err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	if solveErr != nil {
		s.logger.Warn("async run did not produce a timetable",
			zap.String("run_id", run.ID), zap.Error(solveErr))
	}
	return nil
}

// solve executes the full pipeline and mutates the run in place.
func (s *TimetableService) solve(ctx context.Context, run *models.TimetableRun, req dto.GenerateTimetableRequest) error {
	started := time.Now()
	run.Status = models.RunStatusRunning

	input, err := s.loadInput(ctx)
	if err != nil {
		s.fail(run, started, err.Error())
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load timetable input")
	}

	builder := scheduler.NewBuilder(s.grid, s.logger)
	sessions, issues := builder.Build(input)
	if len(issues) > 0 {
		run.Issues = issues
		s.fail(run, started, appErrors.ErrInputInvalid.Message)
		return appErrors.Clone(appErrors.ErrInputInvalid, strings.Join(issues, "; "))
	}

	params := s.optimizerParams(req)
	var (
		schedule *scheduler.Schedule
		penalty  int
		stats    scheduler.RunStats
	)

	switch run.Strategy {
	case config.StrategyBacktracking:
		scorer := scheduler.NewSlotScorer(s.grid, s.gridCfg.MaxPerSlot)
		solved, btStats, err := scheduler.NewBacktrackingSolver(s.grid, scorer, s.logger).Solve(ctx, sessions)
		stats = scheduler.RunStats{Iterations: btStats.Calls, Elapsed: time.Since(started)}
		if err != nil {
			if errors.Is(err, scheduler.ErrNoSolution) {
				s.fail(run, started, appErrors.ErrNoSolution.Message)
				s.observe(run, started)
				return appErrors.ErrNoSolution
			}
			s.fail(run, started, err.Error())
			s.observe(run, started)
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "backtracking solve")
		}
		schedule = solved
		penalty = scheduler.Evaluate(s.grid, schedule, sessions)
	case config.StrategyCompeting:
		workers := req.Workers
		if workers <= 0 {
			workers = s.solverCfg.Workers
		}
		result := scheduler.NewCompetingSolver(s.grid, scheduler.CompetingParams{
			Workers:   workers,
			Optimizer: params,
		}, s.logger).Solve(ctx, sessions)
		schedule, penalty, stats = result.Schedule, result.Penalty, result.Stats
	default:
		result := scheduler.NewOptimizer(s.grid, params, s.logger).Solve(ctx, sessions)
		schedule, penalty, stats = result.Schedule, result.Penalty, result.Stats
	}

	now := time.Now().UTC()
	run.Status = models.RunStatusFinished
	run.Penalty = penalty
	run.Unplaced = len(sessions) - schedule.Len()
	run.Placements = s.placements(schedule)
	run.Issues = scheduler.ValidateSchedule(s.grid, schedule, sessions)
	run.Stats = models.RunStats{
		Iterations: stats.Iterations,
		Moves:      stats.Moves,
		Accepted:   stats.Accepted,
		Restarts:   stats.Restarts,
		Elapsed:    time.Since(started),
	}
	run.CompletedAt = &now

	s.observe(run, started)
	s.logger.Info("timetable run finished",
		zap.String("run_id", run.ID),
		zap.String("strategy", run.Strategy),
		zap.Int("penalty", penalty),
		zap.Int("placed", schedule.Len()),
		zap.Int("unplaced", run.Unplaced),
		zap.Duration("elapsed", run.Stats.Elapsed),
	)
	return nil
}

func (s *TimetableService) loadInput(ctx context.Context) (scheduler.BuildInput, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return scheduler.BuildInput{}, err
	}
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return scheduler.BuildInput{}, err
	}
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return scheduler.BuildInput{}, err
	}
	enrollment, err := s.students.Enrollment(ctx)
	if err != nil {
		return scheduler.BuildInput{}, err
	}
	blocker, err := s.blockers.Load(ctx, s.grid.Days, s.grid.PeriodsPerDay)
	if err != nil {
		return scheduler.BuildInput{}, err
	}
	return scheduler.BuildInput{
		Teachers:    teachers,
		Subjects:    subjects,
		Assignments: assignments,
		Enrollment:  enrollment,
		Blocker:     blocker,
	}, nil
}

func (s *TimetableService) optimizerParams(req dto.GenerateTimetableRequest) scheduler.OptimizerParams {
	params := scheduler.OptimizerParams{
		MaxIterations:    s.solverCfg.MaxIterations,
		TimeLimit:        s.solverCfg.TimeLimit,
		StagnationLimit:  s.solverCfg.StagnationLimit,
		ProgressInterval: s.solverCfg.ProgressInterval,
		MaxPerSlot:       s.gridCfg.MaxPerSlot,
	}
	if req.MaxIterations > 0 {
		params.MaxIterations = req.MaxIterations
	}
	if req.TimeLimitMs > 0 {
		params.TimeLimit = time.Duration(req.TimeLimitMs) * time.Millisecond
	}
	if req.StagnationLimit > 0 {
		params.StagnationLimit = req.StagnationLimit
	}
	return params
}

func (s *TimetableService) placements(schedule *scheduler.Schedule) []models.Placement {
	var placements []models.Placement
	for _, slot := range schedule.Slots() {
		day, period := s.grid.DayPeriod(slot)
		for _, sess := range schedule.SessionsAt(slot) {
			placements = append(placements, models.Placement{
				SessionID:   sess.ID,
				SubjectID:   sess.SubjectID,
				SubjectName: sess.SubjectName,
				TeacherID:   sess.TeacherID,
				Group:       sess.Group,
				Day:         day,
				Period:      period,
				StudentIDs:  sess.StudentIDs,
			})
		}
	}
	return placements
}

func (s *TimetableService) renderTable(run *models.TimetableRun) export.TimetableTable {
	headers := make([]string, 0, s.grid.Days+1)
	headers = append(headers, "Period")
	for day := 0; day < s.grid.Days; day++ {
		headers = append(headers, fmt.Sprintf("Day %d", day+1))
	}

	cells := make(map[int]map[int][]string)
	for _, placement := range run.Placements {
		if cells[placement.Period] == nil {
			cells[placement.Period] = make(map[int][]string)
		}
		label := fmt.Sprintf("%s g%d (%s)", placement.SubjectName, placement.Group, placement.TeacherID)
		cells[placement.Period][placement.Day] = append(cells[placement.Period][placement.Day], label)
	}

	rows := make([][]string, 0, s.grid.PeriodsPerDay)
	for period := 0; period < s.grid.PeriodsPerDay; period++ {
		row := make([]string, 0, s.grid.Days+1)
		row = append(row, fmt.Sprintf("%d", period+1))
		for day := 0; day < s.grid.Days; day++ {
			row = append(row, strings.Join(cells[period][day], "\n"))
		}
		rows = append(rows, row)
	}

	return export.TimetableTable{Headers: headers, Rows: rows}
}

func (s *TimetableService) fail(run *models.TimetableRun, started time.Time, message string) {
	now := time.Now().UTC()
	run.Status = models.RunStatusFailed
	run.Error = message
	run.Stats.Elapsed = time.Since(started)
	run.CompletedAt = &now
}

func (s *TimetableService) observe(run *models.TimetableRun, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSolve(run.Strategy, string(run.Status), run.Penalty, time.Since(started))
}
