package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/ingest"
	"github.com/arnavshah/exam-staffing-api/pkg/logger"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
	"github.com/arnavshah/exam-staffing-api/pkg/scheduler"
)

type options struct {
	mode    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "staffctl",
		Short:         "Exam staffing scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.mode, "mode", "m", "", "scheduling mode: Consecutive, Break or Mixed")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log scheduler passes")

	root.AddCommand(
		newAssignCmd(opts),
		newReportCmd(opts),
		newTemplateCmd(),
		newKeygenCmd(),
	)
	return root
}

// setup loads config and builds the logger; the CLI logs to stderr only
// when --verbose is set
func (o *options) setup() (*config.Config, models.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, models.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	schedCfg := cfg.SchedulerConfig()
	if o.mode != "" {
		schedCfg.Mode = models.ParseSchedulingMode(o.mode)
	}

	logg := zap.NewNop()
	if o.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
		if logg, err = logger.New(cfg); err != nil {
			return nil, models.Config{}, nil, fmt.Errorf("build logger: %w", err)
		}
	}
	return cfg, schedCfg, logg, nil
}

func readInputs(sessionsPath, staffPath string, cfg models.Config) ([]models.Session, []models.Staff, error) {
	sf, err := os.Open(sessionsPath)
	if err != nil {
		return nil, nil, err
	}
	defer sf.Close()
	sessions, err := ingest.ReadSessionsCSV(sf, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", sessionsPath, err)
	}

	tf, err := os.Open(staffPath)
	if err != nil {
		return nil, nil, err
	}
	defer tf.Close()
	staff, err := ingest.ReadStaffCSV(tf)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", staffPath, err)
	}
	return sessions, staff, nil
}

func (o *options) schedule(sessionsPath, staffPath string) (*models.AssignmentResult, error) {
	_, cfg, logg, err := o.setup()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logg.Sync() }()

	sessions, staff, err := readInputs(sessionsPath, staffPath, cfg)
	if err != nil {
		return nil, err
	}
	if problems := ingest.Validate(models.ScheduleInput{Sessions: sessions, Staff: staff}); len(problems) > 0 {
		return nil, fmt.Errorf("invalid input: %v", problems)
	}
	return scheduler.Assign(sessions, staff, cfg, scheduler.WithLogger(logg))
}
