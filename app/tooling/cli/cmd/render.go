package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain"
	"gopkg.in/yaml.v3"
)

// result is what a mining run produced.
type result struct {
	Difficulty uint
	Workers    int
	Digest     string
	Elapsed    time.Duration
	Blocks     []block.Block
}

type renderedBlock struct {
	Hash  string      `json:"hash" yaml:"hash"`
	Block block.Block `json:"block" yaml:"block"`
}

type renderedChain struct {
	Difficulty      uint            `json:"difficulty" yaml:"difficulty"`
	Workers         int             `json:"workers" yaml:"workers"`
	Digest          string          `json:"digest" yaml:"digest"`
	Elapsed         string          `json:"elapsed" yaml:"elapsed"`
	Inconsistencies []int           `json:"inconsistencies" yaml:"inconsistencies"`
	Blocks          []renderedBlock `json:"blocks" yaml:"blocks"`
}

func (r result) rendered() renderedChain {
	rc := renderedChain{
		Difficulty:      r.Difficulty,
		Workers:         r.Workers,
		Digest:          r.Digest,
		Elapsed:         r.Elapsed.String(),
		Inconsistencies: chain.Inconsistencies(r.Blocks),
		Blocks:          make([]renderedBlock, len(r.Blocks)),
	}

	for i, b := range r.Blocks {
		rc.Blocks[i] = renderedBlock{Hash: b.Hash(), Block: b}
	}

	return rc
}

// renderFunc writes a mining result in one output format.
type renderFunc func(w io.Writer, r result) error

func renderer(format string) (renderFunc, error) {
	switch format {
	case "text":
		return renderText, nil
	case "json":
		return renderJSON, nil
	case "yaml":
		return renderYAML, nil
	}

	return nil, fmt.Errorf("unknown format %q", format)
}

func renderText(w io.Writer, r result) error {
	for i, b := range r.Blocks {
		if i > 0 {
			fmt.Fprintf(w, "%42s\n%42s\n", "|", "v")
		}
		fmt.Fprint(w, b.Render())
	}

	fmt.Fprintf(w, "\nmined %d blocks at difficulty %d with %d workers in %s\n", len(r.Blocks), r.Difficulty, r.Workers, r.Elapsed)

	if pos := chain.Inconsistencies(r.Blocks); len(pos) > 0 {
		fmt.Fprintf(w, "blocks linked to a stale tail: %v\n", pos)
	}

	return nil
}

func renderJSON(w io.Writer, r result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.rendered())
}

func renderYAML(w io.Writer, r result) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	enc.SetIndent(2)
	return enc.Encode(r.rendered())
}
