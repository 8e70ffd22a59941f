package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rekordsync/internal/formatter"
	"github.com/desertthunder/rekordsync/internal/library"
	"github.com/desertthunder/rekordsync/internal/processor"
	"github.com/desertthunder/rekordsync/internal/shared"
	"github.com/desertthunder/rekordsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Process runs the title cleanup and enhancement pipeline over the whole library.
func (r *Runner) Process(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	report := cmd.String("report")
	if report != "" && !dryRun {
		return fmt.Errorf("%w: --report requires --dry-run", shared.ErrInvalidFlag)
	}

	source, closeSource, err := r.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	proc := processor.New(r.config.Processor, r.logger)
	engine := tasks.NewEngine(source, nil, proc, nil, r.config, nil, r.logger)

	var sink library.CommitSink
	var dry *library.DryRunSink
	if dryRun {
		dry = library.NewDryRunSink(r.logger)
		sink = dry
	} else {
		sink = library.NewRealSink(source, r.logger)
	}

	progress, stop := r.logProgress()
	result, err := engine.ProcessLibrary(ctx, progress, sink)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("Processed %d tracks\n", result.TotalTracks)
	if dryRun {
		r.writePlain("Would update %d tracks\n", result.ChangedTracks)
	} else {
		r.writePlain("Updated %d tracks\n", result.ChangedTracks)
	}
	if result.DuplicateGroups > 0 {
		r.writePlain("Found %d duplicate groups, run 'rekordsync duplicates' for details\n", result.DuplicateGroups)
	}

	if report != "" {
		if err := formatter.WriteChangeReport(dry.Saved(), report); err != nil {
			return err
		}
		r.writePlain("Change report written to %s\n", report)
	}

	return nil
}

// Duplicates reports tracks that appear more than once, comparing enhanced titles so
// differently-annotated copies of the same recording still group together.
func (r *Runner) Duplicates(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	source, closeSource, err := r.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	collection, err := source.Collection()
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	proc := processor.New(r.config.Processor, r.logger)
	proc.SetOriginalTitles(collection)
	proc.ProcessCollection(collection)

	groups := processor.DuplicateGroups(collection.AllTracks())
	if len(groups) == 0 {
		r.writePlain("No duplicates found\n")
		return nil
	}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteDuplicateReport(groups, output); err != nil {
			return err
		}
		r.writePlain("Duplicate report written to %s\n", output)
		return nil
	}

	data, err := formatter.DuplicatesToText(groups)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// Clean unwinds stacked title annotations across the whole library.
func (r *Runner) Clean(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	source, closeSource, err := r.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	proc := processor.New(r.config.Processor, r.logger)
	engine := tasks.NewEngine(source, nil, proc, nil, r.config, nil, r.logger)

	var sink library.CommitSink
	if cmd.Bool("dry-run") {
		sink = library.NewDryRunSink(r.logger)
	} else {
		sink = library.NewRealSink(source, r.logger)
	}

	progress, stop := r.logProgress()
	result, err := engine.RepairTitles(ctx, progress, sink)
	stop()
	if err != nil {
		return err
	}

	if result.DryRun {
		r.writePlain("Would repair %d of %d tracks\n", result.RepairedTracks, result.TotalTracks)
	} else {
		r.writePlain("Repaired %d of %d tracks\n", result.RepairedTracks, result.TotalTracks)
	}
	return nil
}
