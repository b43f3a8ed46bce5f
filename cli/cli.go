// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/config"
	"github.com/kkkunny/chip8vm/machine"
)

// Options are the parsed command line.
type Options struct {
	Input  string
	Disasm bool
	Config config.Config
}

// MachineOptions derives the core options from the run configuration.
func (o Options) MachineOptions(logger *log.Logger) machine.Options {
	return machine.Options{
		Logger: logger,
		Seed:   o.Config.Seed,
		Trace:  o.Config.Trace,
	}
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] <rom file>\n\n", e.flags.Name())
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

// ParseFlags parses args, with args[0] being the program name. Exactly one
// positional argument, the rom path, is accepted.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	opts := Options{Config: config.Default()}
	readOptionFlags(flags, &opts)

	if err := flags.Parse(args[1:]); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch len(rest) {
	case 0:
		return opts, &UsageError{flags: flags, msg: "missing rom file"}
	case 1:
		opts.Input = rest[0]
	default:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("expected one rom file, got %d arguments", len(rest))}
	}

	if err := opts.Config.Validate(); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *Options) {
	cfg := &opts.Config
	flags.IntVar(&cfg.ClockSpeed, "speed", config.DefaultClockSpeed, "instructions executed per second")
	flags.IntVar(&cfg.TimerRate, "timer", config.DefaultTimerRate, "delay and sound timer rate in Hz")
	flags.IntVar(&cfg.Scale, "scale", config.DefaultScale, "window pixels per CHIP-8 pixel")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "random number seed, 0 picks one from the clock")
	flags.BoolVar(&cfg.Trace, "trace", false, "log every executed instruction (needs -debug)")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&cfg.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&cfg.Mute, "mute", false, "disable sound")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print the disassembled rom and exit")
}

// Exit reports err on stderr, with usage for usage errors, and exits with
// status 1.
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	var usage *UsageError
	if errors.As(err, &usage) {
		usage.ShowUsage(os.Stderr)
	}
	os.Exit(1)
}
