// Command playground streams generations, summaries, answers and video jobs
// from a generative-AI backend.
//
// Usage:
//
//	playground [global flags] <command> [command flags] [input]
//
// Commands:
//
//	generate     Stream free-form text (backend, openai, anthropic or gemini)
//	summarize    Stream a summary of text, stdin or --files globs
//	ask          Stream an answer from document collections
//	video        Stream progress of a video generation job
//	models       List backend models
//	collections  List document collections
//	image        Generate images
//	audio        Synthesize speech
//	tui          Interactive playground
//
// Input is taken from the remaining arguments, or from stdin when none are
// given or the only argument is "-". API keys are read from OPENAI_API_KEY,
// ANTHROPIC_API_KEY and GEMINI_API_KEY.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fwojciec/playground"
	"github.com/jessevdk/go-flags"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "playground: %v\n", err)
		if errors.Is(err, playground.ErrCanceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// run parses args and executes the selected command. Environment access goes
// through getenv so tests can supply their own.
func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{
		ctx:    ctx,
		getenv: getenv,
		in:     stdin,
		out:    stdout,
		errOut: stderr,
	}
	defer a.close()

	opts := newOptions(a)
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "playground"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		if err := a.setup(ctx, &opts.Global); err != nil {
			return err
		}
		return cmd.Execute(args)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return nil
		}
		return err
	}
	return nil
}
