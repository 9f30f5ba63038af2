// run.go implements the simulation command.
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kolkov/barbershop/internal/sim"
)

// runCommand runs one simulation and reports its outcome.
//
// Flow:
//  1. Parse the client and seat counts and the flags
//  2. Run the simulation until every client left and the barber stopped
//  3. Print the audit report when requested
//  4. Return 0, or 1 on any failure
func runCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return 1
	}
	cfg.Out = stdout
	cfg.ErrOut = stderr

	res, err := sim.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if res.Audit != nil {
		if err := res.Audit.Report(stdout, cfg.Clients); err != nil {
			fmt.Fprintf(stderr, "Audit failed: %v\n", err)
			return 1
		}
	}
	return 0
}

// parseRunArgs builds a simulation config from the command line.
//
// The two positional arguments are the client and seat counts. Flags may
// appear anywhere and take the -name or -name=value form; a leading double
// dash is accepted too.
//
// Returns:
//   - sim.Config with counts, backend, durations and modes set
//   - error if an argument is missing, malformed or unknown
func parseRunArgs(args []string) (sim.Config, error) {
	var cfg sim.Config
	var positional []string

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") || isNumber(arg) {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch name {
		case "info":
			if hasValue {
				return sim.Config{}, fmt.Errorf("flag -info takes no value")
			}
			cfg.Info = true
		case "audit":
			if hasValue {
				return sim.Config{}, fmt.Errorf("flag -audit takes no value")
			}
			cfg.Audit = true
		case "backend":
			if value == "" {
				return sim.Config{}, fmt.Errorf("flag -backend needs a value")
			}
			cfg.Backend = value
		case "haircut":
			d, err := parseDuration(name, value)
			if err != nil {
				return sim.Config{}, err
			}
			cfg.Haircut = d
		case "arrival":
			d, err := parseDuration(name, value)
			if err != nil {
				return sim.Config{}, err
			}
			cfg.MaxArrival = d
		default:
			return sim.Config{}, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	if len(positional) < 2 {
		return sim.Config{}, fmt.Errorf("expected <numClients> <numSeats>, got %d argument(s)", len(positional))
	}
	if len(positional) > 2 {
		return sim.Config{}, fmt.Errorf("unexpected argument: %s", positional[2])
	}

	clients, err := strconv.Atoi(positional[0])
	if err != nil {
		return sim.Config{}, fmt.Errorf("invalid number of clients %q", positional[0])
	}
	seats, err := strconv.Atoi(positional[1])
	if err != nil {
		return sim.Config{}, fmt.Errorf("invalid number of seats %q", positional[1])
	}
	cfg.Clients = clients
	cfg.Seats = seats

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// parseDuration reads a non-negative duration flag. Zero is mapped to a
// negative value so that sim treats it as "no delay" instead of the default.
func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("flag -%s needs a duration", name)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("flag -%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("flag -%s must not be negative, got %v", name, d)
	}
	if d == 0 {
		return -1, nil
	}
	return d, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
