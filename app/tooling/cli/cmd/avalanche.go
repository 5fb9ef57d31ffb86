package cmd

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ardanlabs/powminer/foundation/blockchain/avalanche"
	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
	"github.com/spf13/cobra"
)

var (
	input    string
	attempts uint64
)

var avalancheCmd = &cobra.Command{
	Use:   "avalanche",
	Short: "Show how one changed character scrambles a digest",
	RunE:  avalancheRun,
}

func init() {
	rootCmd.AddCommand(avalancheCmd)
	avalancheCmd.Flags().StringVarP(&input, "input", "i", "", "Text to hash, prompted for when empty.")
	avalancheCmd.Flags().Uint64VarP(&attempts, "attempts", "n", 0, "Guesses to try recovering the text, 0 for unlimited. Prompted for when not set.")
}

func avalancheRun(cmd *cobra.Command, args []string) error {
	r := bufio.NewReader(cmd.InOrStdin())
	w := cmd.OutOrStdout()

	text := input
	for text == "" {
		var err error
		if text, err = prompt(r, w, "Text to hash: "); err != nil {
			return err
		}
	}

	if err := showAvalanche(w, text, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))); err != nil {
		return err
	}

	n := attempts
	if !cmd.Flags().Changed("attempts") {
		var err error
		if n, err = promptAttempts(r, w); err != nil {
			return err
		}
	}

	ev, sync, err := eventLogger()
	if err != nil {
		return err
	}
	defer sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := avalanche.Search(ctx, hash.Digest([]byte(text)), n, ev)
	if err != nil {
		fmt.Fprintf(w, "search stopped after %d attempts\n", res.Attempts)
		return err
	}

	if res.Found {
		fmt.Fprintf(w, "found %q after %d attempts\n", res.Value, res.Attempts)
		return nil
	}

	fmt.Fprintf(w, "not found in %d attempts, last guess %q\n", res.Attempts, res.Value)
	return nil
}

func showAvalanche(w io.Writer, text string, rnd *rand.Rand) error {
	changed, idx, err := avalanche.ChangeOne(text, rnd)
	if err != nil {
		return err
	}

	a := hash.Digest([]byte(text))
	b := hash.Digest([]byte(changed))

	fmt.Fprintf(w, "%-10s %q\n%-10s %s\n", "original", text, "digest", a)
	fmt.Fprintf(w, "%-10s %q (index %d)\n%-10s %s\n", "changed", changed, idx, "digest", b)
	fmt.Fprintf(w, "%-10s %s characters differ\n", "diff", avalanche.Compare(a, b))

	return nil
}

// promptAttempts asks until it gets a number of attempts. Zero means the
// search runs until it finds the text or is interrupted.
func promptAttempts(r *bufio.Reader, w io.Writer) (uint64, error) {
	for {
		s, err := prompt(r, w, "Guesses to try (0 = unlimited, Ctrl+C stops): ")
		if err != nil {
			return 0, err
		}

		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			fmt.Fprintf(w, "%q is not a number of guesses\n", s)
			continue
		}

		return n, nil
	}
}
