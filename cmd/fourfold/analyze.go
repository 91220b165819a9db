package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/fourfold/internal/export"
	"github.com/dusk-indust/fourfold/internal/logger"
	"github.com/dusk-indust/fourfold/internal/orchestrator"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

type analyzeFlags struct {
	problem stream.Problem
	file    string
	streams []string
	format  string
	quiet   bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Run the four streams against a problem and print the synthesis",
		Example: `  fourfold analyze "Should we migrate the billing service to event sourcing?"
  fourfold analyze --file problem.yml --format markdown
  fourfold analyze -d "Pick a cache" --streams methodical,skeptical --per-task 2s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.problem.Description = args[0]
			}
			p, err := buildProblem(f.problem, f.file)
			if err != nil {
				return err
			}
			switch f.format {
			case "table", "json", "markdown":
			default:
				return fmt.Errorf("unknown format %q (want table, json or markdown)", f.format)
			}

			out := cmd.OutOrStdout()
			progress := cmd.ErrOrStderr()
			if f.quiet {
				progress = io.Discard
			}
			reporter := orchestrator.NewProgressReporter()
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range reporter.Subscribe() {
					fmt.Fprintln(progress, orchestrator.FormatProgress(ev))
				}
			}()

			defer func() {
				reporter.Close()
				<-done
			}()

			return withRuntime(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				tasks, err := spawnTasks(a.registry, f.streams)
				if err != nil {
					return err
				}
				ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "fourfold.cli", ProblemID: p.ID})
				a.log.InfoContext(ctx, "analysis started",
					"problem", logger.Truncate(p.Description, 80),
					"streams", len(tasks),
				)

				fmt.Fprintln(progress, orchestrator.FormatRunHeader(p.ID, len(tasks)))
				res := a.orch.ExecuteStreams(ctx, p, tasks)
				reporter.Close()
				<-done

				return render(out, f.format, res)
			}, orchestrator.WithReporter(reporter))
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.problem.ID, "id", "", "problem ID (default: generated)")
	fl.StringVarP(&f.problem.Description, "description", "d", "", "problem statement")
	fl.StringVar(&f.problem.Context, "context", "", "background information")
	fl.StringArrayVar(&f.problem.Constraints, "constraint", nil, "constraint (repeatable)")
	fl.StringArrayVar(&f.problem.Goals, "goal", nil, "goal (repeatable)")
	fl.StringVar(&f.problem.Complexity, "complexity", "", "low, medium or high")
	fl.StringVar(&f.problem.Urgency, "urgency", "", "low, medium or high")
	fl.StringVarP(&f.file, "file", "f", "", "read the problem from a YAML file ('-' for stdin)")
	fl.StringSliceVar(&f.streams, "streams", nil, "stream kinds to run (default: all four)")
	fl.StringVarP(&f.format, "format", "o", "table", "output format: table, json or markdown")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress progress lines")
	fl.Duration("per-task", 0, "per-stream timeout (overrides config)")
	fl.Duration("total", 0, "whole-batch timeout (overrides config)")
	fl.Duration("stream-delay", 0, "pause between stream steps (overrides config)")
	_ = viper.BindPFlag("per-task", fl.Lookup("per-task"))
	_ = viper.BindPFlag("total", fl.Lookup("total"))
	_ = viper.BindPFlag("stream-delay", fl.Lookup("stream-delay"))
	return cmd
}

// buildProblem merges a YAML problem file under the flag values. Flags win
// over the file for every field they set.
func buildProblem(flags stream.Problem, file string) (stream.Problem, error) {
	var p stream.Problem
	if file != "" {
		var (
			data []byte
			err  error
		)
		if file == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return p, fmt.Errorf("read problem file: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse problem file: %w", err)
		}
	}

	if flags.ID != "" {
		p.ID = flags.ID
	}
	if flags.Description != "" {
		p.Description = flags.Description
	}
	if flags.Context != "" {
		p.Context = flags.Context
	}
	if len(flags.Constraints) > 0 {
		p.Constraints = flags.Constraints
	}
	if len(flags.Goals) > 0 {
		p.Goals = flags.Goals
	}
	if flags.Complexity != "" {
		p.Complexity = flags.Complexity
	}
	if flags.Urgency != "" {
		p.Urgency = flags.Urgency
	}

	if strings.TrimSpace(p.Description) == "" {
		return p, errors.New("a problem description is required (argument, --description or --file)")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return p, nil
}

func spawnTasks(reg *stream.Registry, kinds []string) ([]stream.Task, error) {
	if len(kinds) == 0 {
		return reg.SpawnAll()
	}
	tasks := make([]stream.Task, 0, len(kinds))
	for _, k := range kinds {
		kind := stream.Kind(strings.ToLower(strings.TrimSpace(k)))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown stream kind %q", k)
		}
		t, err := reg.Spawn(kind)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func render(w io.Writer, format string, res synthesis.Result) error {
	switch format {
	case "json":
		return export.JSON(w, res)
	case "markdown":
		_, err := io.WriteString(w, export.Markdown(res))
		return err
	default:
		renderTables(w, res)
		return nil
	}
}

func renderTables(w io.Writer, res synthesis.Result) {
	fmt.Fprintf(w, "\n%s\n\n", res.Conclusion)
	fmt.Fprintf(w, "Confidence %.2f, quality %.2f\n\n", res.Confidence, res.Quality.OverallScore)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Streams")
	tw.AppendHeader(table.Row{"Stream", "Status", "Confidence", "Time", "Error"})
	for _, s := range res.Metadata.Streams {
		tw.AppendRow(table.Row{s.StreamID, s.Status, fmt.Sprintf("%.2f", s.Confidence), s.ProcessingTime.Round(time.Millisecond), logger.Truncate(s.Error, 60)})
	}
	tw.Render()

	if len(res.Recommendations) > 0 {
		tw = table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle("Recommendations")
		tw.AppendHeader(table.Row{"#", "Recommendation", "Priority", "Sources"})
		for i, r := range res.Recommendations {
			tw.AppendRow(table.Row{i + 1, r.Description, fmt.Sprintf("%.2f", r.Priority), kindList(r.Sources)})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 70}})
		tw.Render()
	}

	if len(res.Conflicts) > 0 {
		tw = table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle("Conflicts")
		tw.AppendHeader(table.Row{"Severity", "Type", "Streams", "Action"})
		for _, c := range res.Conflicts {
			action := ""
			if c.Framework != nil {
				action = c.Framework.RecommendedAction
			}
			tw.AppendRow(table.Row{c.Severity, c.Type, strings.Join(c.Sources, " vs "), action})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Transformer: severityColor},
			{Number: 4, WidthMax: 60},
		})
		tw.Render()
	}
}

func severityColor(v any) string {
	s := fmt.Sprint(v)
	switch s {
	case "critical":
		return text.Colors{text.Bold, text.FgRed}.Sprint(s)
	case "high":
		return text.FgYellow.Sprint(s)
	}
	return s
}

func kindList(ks []stream.Kind) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
