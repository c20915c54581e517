// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sigrepeat/checkpoint"
	"github.com/grailbio/sigrepeat/evaluate"
	"v.io/x/lib/cmdline"
)

// interruptible returns a context that is canceled on SIGINT or SIGTERM.
// Samples already committed stay committed.
func interruptible() (context.Context, func()) {
	ctx, cancel := context.WithCancel(vcontext.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Printf("received %v, stopping after in-flight samples", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

func newCmdEval() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "eval",
		Short: "Evaluate computed repeat masks against ground truth",
	}
	opts := evaluate.DefaultOpts
	mode := cmd.Flags.String("mode", opts.Mode.String(), "Projection mode: 'pointwise' projects -bed through each alignment table; 'batch' projects per-read -repeats intervals through -mapping tables")
	cmd.Flags.StringVar(&opts.SignalDir, "signal", "", "Directory of per-read signal dumps; defines the corpus")
	cmd.Flags.StringVar(&opts.AlignmentDir, "align", "", "Directory of per-read alignment tables")
	cmd.Flags.StringVar(&opts.GroundTruthDir, "gt", "", "Directory of per-read ground-truth masks")
	cmd.Flags.StringVar(&opts.RepeatBED, "bed", "", "Reference repeat BED (pointwise mode)")
	cmd.Flags.BoolVar(&opts.OneBasedBED, "one-based-bed", false, "Interpret -bed start coordinates as 1-based")
	cmd.Flags.StringVar(&opts.RepeatDir, "repeats", "", "Directory of per-read repeat intervals (batch mode)")
	cmd.Flags.StringVar(&opts.MappingDir, "mapping", "", "Directory of per-read mapping tables (batch mode); defaults to the alignment tables")
	cmd.Flags.StringVar(&opts.DiagDir, "diag", "", "If set, write a ground truth / computed mask dump per read into this directory")
	cmd.Flags.StringVar(&opts.CheckpointPath, "checkpoint", opts.CheckpointPath, "Checkpoint path")
	cmd.Flags.StringVar(&opts.ReportPath, "report", "", "If set, write a per-read TSV report to this path")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", opts.Parallelism, "Number of reads evaluated concurrently")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("eval takes no arguments, but got %v", argv)
		}
		var err error
		if opts.Mode, err = evaluate.ParseMode(*mode); err != nil {
			return err
		}
		ctx, cancel := interruptible()
		defer cancel()
		summary, err := evaluate.Run(ctx, opts, nil)
		if err != nil {
			return err
		}
		if !summary.Complete() {
			return fmt.Errorf("%d read(s) failed; rerun to retry them", summary.Failed)
		}
		return nil
	})
	return cmd
}

func newCmdMakeMaps() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "make-maps",
		Short: "Generate ground-truth masks by projecting a reference repeat BED through alignment tables",
	}
	opts := evaluate.DefaultMakeMapsOpts
	cmd.Flags.StringVar(&opts.SignalDir, "signal", "", "Directory of per-read signal dumps")
	cmd.Flags.StringVar(&opts.AlignmentDir, "align", "", "Directory of per-read reference alignment tables")
	cmd.Flags.StringVar(&opts.RepeatBED, "bed", "", "Reference repeat BED")
	cmd.Flags.BoolVar(&opts.OneBasedBED, "one-based-bed", false, "Interpret -bed start coordinates as 1-based")
	cmd.Flags.StringVar(&opts.OutputDir, "out", "", "Output directory for the generated masks")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", opts.Parallelism, "Number of reads processed concurrently")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("make-maps takes no arguments, but got %v", argv)
		}
		ctx, cancel := interruptible()
		defer cancel()
		_, err := evaluate.MakeMaps(ctx, opts)
		return err
	})
	return cmd
}

func newCmdStatus() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "status",
		Short:    "Show the progress recorded in a checkpoint",
		ArgsName: "checkpoint",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("status takes one checkpoint path, but got %v", argv)
		}
		return status(vcontext.Background(), env.Stdout, argv[0])
	})
	return cmd
}

// status prints the totals stored in the checkpoint at path as a two-column
// TSV.
func status(ctx context.Context, out io.Writer, path string) error {
	state, found, err := (&checkpoint.FileStore{Path: path}).Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s: no checkpoint", path)
	}
	t := state.Totals
	w := tsv.NewWriter(out)
	for _, row := range []struct {
		key string
		val int64
	}{
		{"processed", int64(state.Processed.Len())},
		{"gt", t.GT},
		{"computed", t.Computed},
		{"intersection", t.Intersection},
		{"union", t.Union},
		{"length", t.Length},
	} {
		w.WriteString(row.key)
		w.WriteInt64(row.val)
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	for _, row := range []struct {
		key string
		val fmt.Stringer
	}{
		{"iou", t.IoU()},
		{"sensitivity", t.Sensitivity()},
		{"specificity", t.Specificity()},
	} {
		w.WriteString(row.key)
		w.WriteString(row.val.String())
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	root := &cmdline.Command{
		Name:     "bio-repeat-eval",
		Short:    "Evaluate signal-level repeat predictions against ground truth",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdEval(),
			newCmdMakeMaps(),
			newCmdStatus(),
		},
	}
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(root, env, os.Args[1:])
	shutdown()
	os.Exit(cmdline.ExitCode(err, env.Stderr))
}
