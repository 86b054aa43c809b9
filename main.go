// ════════════════════════════════════════════════════════════════════════════════════════════════
// Selector Mining Engine - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: CLI Definition & Command Dispatch
//
// Description:
//   Command-line surface for mining cheap 4-byte dispatch selectors: a one-shot mine
//   command, a signature→selector inspection helper, session management over the
//   sqlite store, and an interactive REPL for iterative exploration.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"selmine/constants"
	"selmine/debug"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FLAGS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	nameFlag = &cli.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "base function name, e.g. deposit",
		Required: true,
	}
	paramsFlag = &cli.StringFlag{
		Name:    "params",
		Aliases: []string{"p"},
		Usage:   "comma-separated canonical parameter types, e.g. address,uint256",
	}
	modelFlag = &cli.StringFlag{
		Name:  "model",
		Usage: "score model: leading_zero_bytes|zeros, numeric_rank|rank, target_prefix|prefix",
		Value: "leading_zero_bytes",
	}
	alphabetFlag = &cli.StringFlag{
		Name:  "alphabet",
		Usage: "candidate token alphabet (ordering fixes enumeration order)",
		Value: constants.CompactAlphabet,
	}
	separatorFlag = &cli.StringFlag{
		Name:  "separator",
		Usage: "joins base name and appended token; empty concatenates directly",
		Value: constants.DefaultSeparator,
	}
	insertAtFlag = &cli.IntFlag{
		Name:  "insert-at",
		Usage: "splice tokens into the base name at this byte offset instead of appending",
		Value: -1,
	}
	minLenFlag = &cli.IntFlag{
		Name:  "min-len",
		Usage: "minimum token length",
		Value: constants.DefaultMinTokenLen,
	}
	maxLenFlag = &cli.IntFlag{
		Name:  "max-len",
		Usage: "maximum token length",
		Value: constants.DefaultMaxTokenLen,
	}
	maxCandidatesFlag = &cli.Uint64Flag{
		Name:  "max-candidates",
		Usage: "evaluation budget for this run (0 = default)",
	}
	topFlag = &cli.IntFlag{
		Name:    "top",
		Aliases: []string{"k"},
		Usage:   "ranked results to keep",
		Value:   constants.DefaultTopK,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "parallel workers (0 = one per CPU); results are identical for any count",
	}
	zeroTargetFlag = &cli.IntFlag{
		Name:  "zero-target",
		Usage: "stop early once a selector with this many leading zero bytes is found",
	}
	prefixFlag = &cli.StringFlag{
		Name:  "prefix",
		Usage: "target selector prefix in hex (1-4 bytes), e.g. 0x0000 — selects target_prefix",
	}
	siblingsFlag = &cli.StringFlag{
		Name:  "siblings",
		Usage: "file of occupied selectors, one hex value per line",
	}
	abiFlag = &cli.StringFlag{
		Name:  "abi",
		Usage: "contract ABI JSON file; its function selectors become the sibling set",
	}
	costTableFlag = &cli.StringFlag{
		Name:  "cost-table",
		Usage: "JSON array of per-rank dispatch gas for numeric_rank (measured, not assumed)",
	}
	vocabFlag = &cli.StringFlag{
		Name:  "vocab",
		Usage: "JSON array of canonical parameter type names overriding the built-in set",
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "emit results as JSON instead of a table",
	}
	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "sqlite session database for pause/resume and result archiving",
	}
	sessionFlag = &cli.StringFlag{
		Name:  "session",
		Usage: "session id within --db; creates it, or continues it under --resume",
	}
	resumeFlag = &cli.BoolFlag{
		Name:  "resume",
		Usage: "continue --session at its persisted cursor and geometry",
	}
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func newApp() *cli.App {
	return &cli.App{
		Name:  "selmine",
		Usage: "mine gas-efficient 4-byte function selectors",
		Commands: []*cli.Command{
			{
				Name:  "mine",
				Usage: "search variant tokens for the best-ranked selectors",
				Flags: []cli.Flag{
					nameFlag, paramsFlag, modelFlag, alphabetFlag, separatorFlag,
					insertAtFlag, minLenFlag, maxLenFlag, maxCandidatesFlag,
					topFlag, workersFlag, zeroTargetFlag, prefixFlag,
					siblingsFlag, abiFlag, costTableFlag, vocabFlag, jsonFlag,
					dbFlag, sessionFlag, resumeFlag,
				},
				Action: runMine,
			},
			{
				Name:      "selector",
				Usage:     "print the selector of a canonical signature",
				ArgsUsage: "<signature> e.g. 'transfer(address,uint256)'",
				Flags:     []cli.Flag{vocabFlag, jsonFlag},
				Action:    runSelector,
			},
			{
				Name:   "sessions",
				Usage:  "list persisted mining sessions",
				Flags:  []cli.Flag{dbFlag, jsonFlag},
				Action: runSessions,
			},
			{
				Name:   "repl",
				Usage:  "interactive mining shell",
				Flags:  []cli.Flag{dbFlag},
				Action: runRepl,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		debug.DropError("FATAL", err)
		os.Exit(1)
	}
}
