// Package cmd contains the miner cli.
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ardanlabs/powminer/foundation/logger"
	"github.com/spf13/cobra"
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log mining events to stderr.")
}

var rootCmd = &cobra.Command{
	Use:           "cli",
	Short:         "Mine a proof of work chain and explore hashing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// eventLogger returns a function that logs events to stderr when verbose
// output was requested.
func eventLogger() (func(v string, args ...any), func(), error) {
	if !verbose {
		return func(string, ...any) {}, func() {}, nil
	}

	log, err := logger.New("CLI", "stderr")
	if err != nil {
		return nil, nil, fmt.Errorf("constructing logger: %w", err)
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	return ev, func() { log.Sync() }, nil
}

// prompt writes the question and reads one trimmed line of input.
func prompt(r *bufio.Reader, w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)

	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
