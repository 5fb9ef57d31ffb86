package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ardanlabs/powminer/foundation/blockchain/chain/memory"
	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
	"github.com/ardanlabs/powminer/foundation/blockchain/worker"
	"github.com/spf13/cobra"
)

var (
	difficulty  uint
	blocks      uint
	workers     int
	digest      string
	maxAttempts uint64
	reportEvery uint64
	timeout     time.Duration
	format      string
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a chain of blocks concurrently",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().UintVarP(&difficulty, "difficulty", "d", 3, "Number of leading zero hex characters a hash needs.")
	mineCmd.Flags().UintVarP(&blocks, "blocks", "b", 5, "Number of blocks to mine, including the genesis block.")
	mineCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Number of concurrent miners.")
	mineCmd.Flags().StringVar(&digest, "digest", string(hash.SHA256), "Hash algorithm, sha256 or keccak256.")
	mineCmd.Flags().Uint64Var(&maxAttempts, "max-attempts", 0, "Nonces to try per block before giving up, zero for no limit.")
	mineCmd.Flags().Uint64Var(&reportEvery, "report-every", 100_000, "Attempts between progress events.")
	mineCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Stop mining after this long, zero for no limit.")
	mineCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format, text, json or yaml.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	render, err := renderer(format)
	if err != nil {
		return err
	}

	ev, sync, err := eventLogger()
	if err != nil {
		return err
	}
	defer sync()

	s, err := worker.New(worker.Config{
		Store:       memory.New(),
		Difficulty:  difficulty,
		BlockCount:  blocks,
		Workers:     workers,
		Digest:      hash.Algorithm(digest),
		MaxAttempts: maxAttempts,
		ReportEvery: reportEvery,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	chn, err := s.Run(ctx)
	elapsed := time.Since(start)

	res := result{
		Difficulty: difficulty,
		Workers:    s.Workers(),
		Digest:     hash.Algorithm(digest).String(),
		Elapsed:    elapsed,
		Blocks:     chn,
	}

	if rerr := render(cmd.OutOrStdout(), res); rerr != nil {
		return rerr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("mining cancelled after %d blocks: %w", len(chn), err)
	case err != nil:
		return err
	}

	return nil
}
