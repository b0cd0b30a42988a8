package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"viewdeploy/internal/config"
	"viewdeploy/internal/deployer"
	"viewdeploy/internal/description"
	"viewdeploy/internal/observability"
	"viewdeploy/internal/publisher"
	"viewdeploy/internal/revision"
	"viewdeploy/internal/template"
	"viewdeploy/internal/ui"
	"viewdeploy/internal/warehouse"
	"viewdeploy/pkg/models"
)

// errMissingMode is returned when neither a metric file nor batch mode is given
var errMissingMode = errors.New("one of --metric_file or --all_metrics is required")

// Replaced in tests
var (
	fsys          = afero.NewOsFs()
	openWarehouse = warehouse.ForSettings
	selectEntries = deployer.Selector(ui.MultiSelect)
)

type rootOptions struct {
	metricFile   string
	outputFile   string
	createView   bool
	allMetrics   bool
	dataset      string
	project      string
	settingsFile string
	selectViews  bool
	logLevel     string
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "viewdeploy",
		Short: "Render SQL templates and deploy them as warehouse views",
		Long: `viewdeploy renders Jinja style SQL templates with the values from
configuration/configuration.json and optionally replaces a warehouse view with
the result, attaching column descriptions from <view>.json.

Render one metric:         viewdeploy -m daily_orders.sql.j2 -o daily_orders.sql
Render and deploy a view:  viewdeploy -m daily_orders.sql.j2 -v -d sales -p my-project
Deploy every view:         viewdeploy -a -d sales`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.metricFile, "metric_file", "m", "", "the metric filename to process")
	flags.StringVarP(&opts.outputFile, "output_file", "o", "", "write the rendered SQL to build/OUTPUTFILE")
	flags.BoolVarP(&opts.createView, "create_view", "v", false, "create a view from the metric")
	flags.BoolVarP(&opts.allMetrics, "all_metrics", "a", false, "deploy all views")
	flags.StringVarP(&opts.dataset, "dataset", "d", "", "deploy views to this dataset")
	flags.StringVarP(&opts.project, "project", "p", "", "deploy views to a dataset in this project")
	flags.BoolVar(&opts.selectViews, "select", false, "choose which manifest entries to deploy (with --all_metrics)")
	cmd.PersistentFlags().StringVar(&opts.settingsFile, "settings", "", "settings file (default is ./.viewdeploy.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newInitCmd(), newLoginCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errMissingMode) {
			ui.ShowError(err)
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	if !opts.allMetrics && opts.metricFile == "" {
		cmd.SetOut(cmd.ErrOrStderr())
		_ = cmd.Usage()
		return errMissingMode
	}

	settings, err := config.Load(fsys, opts.settingsFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(settings, opts.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	vars, err := config.LoadVariables(fsys, settings.Paths.Configuration)
	if err != nil {
		return err
	}

	renderer := template.NewRenderer(fsys, settings.Paths.Templates, settings.Paths.Build, vars, template.WithLogger(logger))
	ctx := cmd.Context()

	if opts.allMetrics {
		if err := deployAll(ctx, settings, renderer, logger, opts); err != nil {
			return err
		}
	} else {
		if err := renderOne(ctx, settings, renderer, logger, opts); err != nil {
			return err
		}
	}

	ui.Done("Finished!")
	return nil
}

func renderOne(ctx context.Context, settings *models.Settings, renderer *template.Renderer, logger *observability.Logger, opts *rootOptions) error {
	ui.Detail(fmt.Sprintf("Metric file is ['%s']", opts.metricFile))
	if opts.outputFile != "" {
		ui.Detail(fmt.Sprintf("Output file is ['%s']", opts.outputFile))
	}
	ui.Step(fmt.Sprintf("Rendering ['%s']", strings.ReplaceAll(opts.metricFile, ".j2", "")))

	sql, err := renderer.Render(opts.metricFile, opts.outputFile)
	if err != nil {
		return err
	}

	if opts.createView {
		pub, err := newPublisher(settings, logger)
		if err != nil {
			return err
		}

		view := strings.SplitN(opts.metricFile, ".", 2)[0]
		if _, err := pub.Publish(ctx, opts.dataset, view, opts.project, sql); err != nil {
			return err
		}
	}

	if opts.outputFile != "" {
		target, err := renderer.BuildPath(opts.outputFile)
		if err != nil {
			return err
		}
		ui.Println("...SQL File built at ./" + target)
	}
	return nil
}

func deployAll(ctx context.Context, settings *models.Settings, renderer *template.Renderer, logger *observability.Logger, opts *rootOptions) error {
	pub, err := newPublisher(settings, logger)
	if err != nil {
		return err
	}

	deployOpts := []deployer.Option{deployer.WithLogger(logger)}
	if opts.selectViews {
		deployOpts = append(deployOpts, deployer.WithSelector(selectEntries))
	}

	_, err = deployer.New(fsys, settings, renderer, pub, deployOpts...).DeployAll(ctx, opts.dataset)
	return err
}

func newPublisher(settings *models.Settings, logger *observability.Logger) (*publisher.Publisher, error) {
	opener, err := openWarehouse(settings)
	if err != nil {
		return nil, err
	}

	pubOpts := []publisher.Option{publisher.WithLogger(logger)}
	if settings.Deployment.RevisionLabel && settings.Warehouse.Backend == models.BackendBigQuery {
		labels, err := revision.Labels(settings.Paths.SearchRoot)
		if err != nil {
			logger.WarnWithFields("Skipping revision label", map[string]interface{}{"error": err.Error()})
		}
		pubOpts = append(pubOpts, publisher.WithLabels(labels))
	}

	resolver := description.NewResolver(fsys, settings.Paths.SearchRoot)
	return publisher.New(opener, resolver, pubOpts...), nil
}

func newLogger(settings *models.Settings, levelFlag string) (*observability.Logger, func(), error) {
	level := settings.Log.Level
	if levelFlag != "" {
		level = levelFlag
	}

	var output io.Writer = os.Stderr
	closeLog := func() {}
	if settings.Log.File != "" {
		file, err := observability.OpenLogFile(settings.Log.File)
		if err != nil {
			return nil, nil, err
		}
		output = file
		closeLog = func() { file.Close() }
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:   observability.LogLevelFromString(level),
		Output:  output,
		Service: "viewdeploy",
		Version: Version,
	}).WithRunID()

	return logger, closeLog, nil
}
