// ════════════════════════════════════════════════════════════════════════════════════════════════
// Selector Mining Engine - Run Orchestration
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Pipeline Assembly & Session Lifecycle
//
// Description:
//   Turns CLI flags into a wired search pipeline (builder → generator → evaluator →
//   searcher), handles SIGINT-driven cooperative cancellation, and persists session
//   state and archived winners around each run.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sugawarayuuta/sonnet"
	"github.com/urfave/cli/v2"

	"selmine/abiload"
	"selmine/candgen"
	"selmine/constants"
	"selmine/control"
	"selmine/debug"
	"selmine/scorer"
	"selmine/searcher"
	"selmine/selector"
	"selmine/sessionstore"
	"selmine/sigbuild"
	"selmine/types"
	"selmine/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MINE SETUP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// mineSetup is the fully-assembled description of one run, shared by the
// mine command and the REPL.
type mineSetup struct {
	BaseName string
	Params   []string
	Model    types.ScoreModel
	Alphabet string
	MinLen   int
	MaxLen   int

	Separator string
	InsertAt  int // -1 = append mode
	Vocab     []string

	Siblings []uint32
	Costs    types.CostTable
	Prefix   []byte

	Budget    uint64
	TopK      int
	Workers   int
	StopAtKey uint64
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// setupFromFlags resolves every mine flag into a validated mineSetup.
func setupFromFlags(c *cli.Context) (*mineSetup, error) {
	set := &mineSetup{
		BaseName:  c.String("name"),
		Params:    splitParams(c.String("params")),
		Alphabet:  c.String("alphabet"),
		MinLen:    c.Int("min-len"),
		MaxLen:    c.Int("max-len"),
		Separator: c.String("separator"),
		InsertAt:  c.Int("insert-at"),
		Budget:    c.Uint64("max-candidates"),
		TopK:      c.Int("top"),
		Workers:   c.Int("workers"),
	}

	model, ok := types.ParseScoreModel(c.String("model"))
	if !ok {
		return nil, fmt.Errorf("unknown score model %q", c.String("model"))
	}
	set.Model = model

	if path := c.String("vocab"); path != "" {
		vocab, err := sigbuild.LoadVocabulary(path)
		if err != nil {
			return nil, err
		}
		set.Vocab = vocab
	}

	if path := c.String("abi"); path != "" {
		sels, err := abiload.FromABIFile(path)
		if err != nil {
			return nil, err
		}
		set.Siblings = sels
	}
	if path := c.String("siblings"); path != "" {
		sels, err := abiload.FromHexFile(path)
		if err != nil {
			return nil, err
		}
		set.Siblings = abiload.Sorted(append(set.Siblings, sels...))
	}

	if path := c.String("cost-table"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var costs types.CostTable
		if err := sonnet.Unmarshal(data, &costs); err != nil {
			return nil, fmt.Errorf("cost table %s: %w", path, err)
		}
		set.Costs = costs
	}

	if raw := c.String("prefix"); raw != "" {
		if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
			raw = "0x" + raw
		}
		prefix, err := hexutil.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("prefix: %w", err)
		}
		set.Prefix = prefix
		set.Model = types.ModelTargetPrefix
	}

	if z := c.Int("zero-target"); z > 0 {
		if set.Model != types.ModelLeadingZeroBytes {
			return nil, fmt.Errorf("--zero-target applies to the leading_zero_bytes model only")
		}
		if z > constants.SelectorSize {
			return nil, fmt.Errorf("--zero-target %d exceeds selector width %d", z, constants.SelectorSize)
		}
		set.StopAtKey = uint64(z) << 32
	}

	return set, nil
}

// pipeline wires a mineSetup into runnable components.
func (m *mineSetup) pipeline() (*sigbuild.Template, *candgen.Generator, *scorer.Evaluator, error) {
	builder := sigbuild.New(sigbuild.Config{
		Vocab:     m.Vocab,
		Separator: m.Separator,
		Insert:    m.InsertAt >= 0,
		InsertAt:  m.InsertAt,
	})
	tmpl, err := builder.Template(m.BaseName, m.Params)
	if err != nil {
		return nil, nil, nil, err
	}
	gen, err := candgen.New(m.Alphabet, m.MinLen, m.MaxLen)
	if err != nil {
		return nil, nil, nil, err
	}
	ev, err := scorer.New(scorer.Config{
		Model:    m.Model,
		Siblings: m.Siblings,
		Costs:    m.Costs,
		Prefix:   m.Prefix,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return tmpl, gen, ev, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MINE COMMAND
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func runMine(c *cli.Context) error {
	set, err := setupFromFlags(c)
	if err != nil {
		return err
	}

	var (
		store *sessionstore.Store
		sess  *sessionstore.Session
	)
	if dbPath := c.String("db"); dbPath != "" {
		store, err = sessionstore.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id := c.String("session")
		if id == "" && c.Bool("resume") {
			return errors.New("--resume needs --session")
		}
		if id != "" {
			sess, err = openSession(store, id, set, c.Bool("resume"))
			if err != nil {
				return err
			}
		}
	} else if c.Bool("resume") {
		return errors.New("--resume needs --db and --session")
	}

	res, err := executeSearch(set, sess)
	if err != nil {
		return err
	}

	if store != nil && sess != nil {
		sess.Cursor = res.NextCursor
		sess.Evaluated += res.CandidatesEvaluated
		if err := store.Save(sess); err != nil {
			return err
		}
		if err := store.Archive(sess.ID, res.Best); err != nil {
			return err
		}
		// Report the archive's all-time best, not just this slice of work.
		best, err := store.BestKnown(sess.ID, set.TopK)
		if err != nil {
			return err
		}
		res.Best = best
	}

	return emitResult(c.App.Writer, set, res, c.Bool("json"))
}

// openSession creates the named session, or under resume continues it with
// the persisted geometry: a resumed cursor is only meaningful against the
// exact configuration that produced it. Creating over an existing session
// (or resuming a missing one) is refused rather than guessed at.
func openSession(store *sessionstore.Store, id string, set *mineSetup, resume bool) (*sessionstore.Session, error) {
	sess, err := store.Load(id)
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		return nil, err
	}
	if resume {
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", id, err)
		}
		set.BaseName = sess.BaseName
		set.Params = sess.Params
		set.Model = sess.Model
		set.Alphabet = sess.Alphabet
		set.MinLen = sess.MinLen
		set.MaxLen = sess.MaxLen
		if sess.Budget != 0 {
			set.Budget = sess.Budget
		}
		debug.DropMessage("RESUME", id+" at cursor "+utils.Utoa(sess.Cursor))
		return sess, nil
	}
	if err == nil {
		return nil, fmt.Errorf("session %q already exists; pass --resume to continue it", id)
	}
	sess = &sessionstore.Session{
		ID:       id,
		BaseName: set.BaseName,
		Params:   set.Params,
		Model:    set.Model,
		Alphabet: set.Alphabet,
		MinLen:   set.MinLen,
		MaxLen:   set.MaxLen,
		Budget:   set.Budget,
	}
	if err := store.Save(sess); err != nil {
		return nil, err
	}
	debug.DropMessage("SESSION", "created "+id)
	return sess, nil
}

// executeSearch runs one search with SIGINT wired to the stop flag.
func executeSearch(set *mineSetup, sess *sessionstore.Session) (searcher.Result, error) {
	tmpl, gen, ev, err := set.pipeline()
	if err != nil {
		return searcher.Result{}, err
	}
	if sess != nil {
		gen.Seek(sess.Cursor)
	}

	flag := new(control.Flag)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			debug.DropMessage("SIGNAL", "interrupt; finishing in-flight candidates")
			flag.Raise()
		case <-done:
		}
	}()
	defer func() {
		signal.Stop(sigChan)
		close(done)
	}()

	return searcher.Search(context.Background(), searcher.Config{
		Template:      tmpl,
		Generator:     gen,
		Evaluator:     ev,
		TopK:          set.TopK,
		Workers:       set.Workers,
		MaxCandidates: set.Budget,
		StopAtKey:     set.StopAtKey,
		Stop:          flag,
	})
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SELECTOR COMMAND
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func runSelector(c *cli.Context) error {
	sig := c.Args().First()
	if sig == "" {
		return fmt.Errorf("usage: selector '<name(type1,type2)>'")
	}
	open := strings.IndexByte(sig, '(')
	if open < 0 || sig[len(sig)-1] != ')' {
		return fmt.Errorf("signature %q: want name(type1,type2)", sig)
	}
	base := sig[:open]
	params := splitParams(sig[open+1 : len(sig)-1])

	var vocab []string
	if path := c.String("vocab"); path != "" {
		v, err := sigbuild.LoadVocabulary(path)
		if err != nil {
			return err
		}
		vocab = v
	}
	canonical, err := sigbuild.New(sigbuild.Config{Vocab: vocab}).Build(base, params, "")
	if err != nil {
		return err
	}
	if canonical != sig {
		return fmt.Errorf("signature %q is not canonical (want %q)", sig, canonical)
	}
	return emitSelector(c.App.Writer, canonical, selector.Of(canonical), c.Bool("json"))
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SESSIONS COMMAND
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func runSessions(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("--db is required")
	}
	store, err := sessionstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List()
	if err != nil {
		return err
	}
	return emitSessions(c.App.Writer, sessions, c.Bool("json"))
}
