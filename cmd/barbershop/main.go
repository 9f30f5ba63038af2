// Package main implements the barbershop CLI tool.
//
// The barbershop tool runs one day of the sleeping-barber problem: a single
// barber, a bounded waiting room and a crowd of clients arriving at random.
// Every hand-off between a client and the barber goes through one of two
// synchronization backends, and the run can be audited for protocol
// violations with vector clocks.
//
// Usage:
//
//	barbershop 10 3                       # 10 clients, 3 seats
//	barbershop 10 3 -info                 # trace arrivals and the barber
//	barbershop 10 3 -backend=semaphore    # counting semaphore backend
//	barbershop 50 2 -haircut=10ms -audit  # fast run with the race audit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "barbershop version %s\n", versionString())
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		return runCommand(ctx, args, stdout, stderr)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `barbershop - Sleeping Barber Simulation

USAGE:
    barbershop <numClients> <numSeats> [flags]
    barbershop version
    barbershop help

ARGUMENTS:
    numClients    Number of clients visiting the shop (at least 1)
    numSeats      Number of waiting room seats (0 or more)

FLAGS:
    -info                 Trace arrivals, rejections, barber sleep and
                          wake-ups, and the waiting list
    -backend=<name>       Synchronization backend: monitor (default)
                          or semaphore
    -haircut=<duration>   Length of one haircut (default 3s)
    -arrival=<duration>   Longest random arrival delay
                          (default three haircuts)
    -audit                Check the run for protocol violations and
                          print the audit report

EXAMPLES:
    # Ten clients competing for three seats
    barbershop 10 3

    # Same run with the full trace
    barbershop 10 3 -info

    # A fast audited run on the semaphore backend
    barbershop 100 4 -backend=semaphore -haircut=5ms -audit

`)
}
