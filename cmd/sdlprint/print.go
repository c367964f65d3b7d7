package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Protocol-Lattice/sdlprint"
	"github.com/Protocol-Lattice/sdlprint/printer"
)

const stdinName = "-"

func (a *app) printCmd() *cobra.Command {
	printCmd := &cobra.Command{
		Use:   "print [file...]",
		Short: "Print schemas in canonical form",
		Long: "Parse each schema file (standard input when no file or - is given) and write its canonical form to standard output.\n" +
			"Nothing is written to standard output unless every input is valid.",
		RunE: a.runPrint,
	}

	printCmd.Flags().Int("max-width", printer.DefaultMaxWidth, "Line width above which argument lists break")
	printCmd.Flags().Int("inline-limit", printer.DefaultInlineLimit, "Largest list or object literal kept on one line")
	printCmd.Flags().BoolP("watch", "w", false, "Re-print the file whenever it changes")

	_ = a.v.BindPFlag("print.max_width", printCmd.Flags().Lookup("max-width"))
	_ = a.v.BindPFlag("print.inline_limit", printCmd.Flags().Lookup("inline-limit"))
	return printCmd
}

func (a *app) runPrint(cmd *cobra.Command, args []string) error {
	opts := a.printOptions()
	watch, _ := cmd.Flags().GetBool("watch")

	if len(args) == 0 {
		args = []string{stdinName}
	}
	if watch {
		if len(args) != 1 || args[0] == stdinName {
			return errors.New("--watch needs exactly one file")
		}
		return a.watch(cmd.Context(), args[0], opts)
	}
	stdinUses := 0
	for _, name := range args {
		if name == stdinName {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return errors.New("standard input can only be printed once")
	}

	return a.printFiles(args, opts)
}

// printFiles prints every file concurrently and writes the results in
// argument order, separated by a blank line, once all of them succeeded.
func (a *app) printFiles(names []string, opts printer.Options) error {
	outputs := make([]string, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			src, err := a.readSource(name)
			if err == nil {
				outputs[i], err = sdlprint.Format(src, opts)
			}
			errs[i] = err
			return err
		})
	}
	if g.Wait() != nil {
		for i, err := range errs {
			if err == nil {
				continue
			}
			if len(names) > 1 {
				fmt.Fprintf(a.errOut, "%s: ", displayName(names[i]))
			}
			sdlprint.Report(a.errOut, err)
			a.log.WithField("file", displayName(names[i])).Debug("print failed")
			return &reportedError{err: err}
		}
	}

	// documents are separated by a blank line; empty ones add nothing
	var printed []string
	for i, out := range outputs {
		if out != "" {
			printed = append(printed, out)
		}
		a.log.WithField("file", displayName(names[i])).Debug("printed")
	}
	if _, err := io.WriteString(a.out, strings.Join(printed, "\n")); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (a *app) readSource(name string) (string, error) {
	if name == stdinName {
		return sdlprint.ReadSource("standard input", a.in)
	}
	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sdlprint.ErrIO, err)
	}
	defer f.Close()
	return sdlprint.ReadSource(name, f)
}

// watch prints path once and again after every write, until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are followed.
func (a *app) watch(ctx context.Context, path string, opts printer.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	log := a.log.WithField("file", path)
	log.Info("watching for changes")
	a.printWatched(path, opts)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.WithField("op", event.Op.String()).Debug("file changed")
			a.printWatched(path, opts)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

// printWatched runs one print invocation; failures are reported and the
// watch goes on.
func (a *app) printWatched(path string, opts printer.Options) {
	src, err := a.readSource(path)
	if err != nil {
		sdlprint.Report(a.errOut, err)
		return
	}
	if err := sdlprint.PrintSchema(src, a.out, a.errOut, opts); err != nil {
		a.log.WithField("file", path).Debug("print failed")
	}
}

func displayName(name string) string {
	if name == stdinName {
		return "<stdin>"
	}
	return strings.TrimPrefix(name, "./")
}
