// ════════════════════════════════════════════════════════════════════════════════════════════════
// Selector Mining Engine - Interactive Shell
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: REPL for Iterative Mining
//
// Description:
//   Line-oriented shell for exploratory mining: adjust the setup, run budgeted
//   slices, continue where the last slice stopped, inspect selectors, and persist
//   sessions — without re-running the binary per experiment.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"selmine/abiload"
	"selmine/constants"
	"selmine/selector"
	"selmine/sessionstore"
	"selmine/sigbuild"
	"selmine/types"
	"selmine/utils"
)

// replState carries the mutable shell state between commands.
type replState struct {
	set    mineSetup
	cursor uint64
	store  *sessionstore.Store
	sessID string
	out    io.Writer
}

func runRepl(c *cli.Context) error {
	st := &replState{
		set: mineSetup{
			Alphabet:  constants.CompactAlphabet,
			MinLen:    constants.DefaultMinTokenLen,
			MaxLen:    constants.DefaultMaxTokenLen,
			Separator: constants.DefaultSeparator,
			InsertAt:  -1,
			TopK:      constants.DefaultTopK,
			Model:     types.ModelLeadingZeroBytes,
		},
		out: c.App.Writer,
	}
	if dbPath := c.String("db"); dbPath != "" {
		store, err := sessionstore.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		st.store = store
	}

	rl, err := readline.New("selmine> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(st.out, `interactive mining shell — "help" lists commands`)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil { // io.EOF on ctrl-D
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := st.dispatch(fields); err != nil {
			fmt.Fprintln(st.out, "error:", err)
		}
	}
}

func (st *replState) dispatch(fields []string) error {
	switch fields[0] {
	case "help":
		st.printHelp()
		return nil
	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <field> <value>")
		}
		return st.setField(fields[1], strings.Join(fields[2:], " "))
	case "show":
		st.printSetup()
		return nil
	case "abi":
		if len(fields) != 2 {
			return fmt.Errorf("usage: abi <path>")
		}
		sels, err := abiload.FromABIFile(fields[1])
		if err != nil {
			return err
		}
		st.set.Siblings = sels
		fmt.Fprintf(st.out, "loaded %d sibling selectors\n", len(sels))
		return nil
	case "siblings":
		if len(fields) != 2 {
			return fmt.Errorf("usage: siblings <path>")
		}
		sels, err := abiload.FromHexFile(fields[1])
		if err != nil {
			return err
		}
		st.set.Siblings = sels
		fmt.Fprintf(st.out, "loaded %d sibling selectors\n", len(sels))
		return nil
	case "sel":
		if len(fields) != 2 {
			return fmt.Errorf("usage: sel <name(type1,type2)>")
		}
		return st.inspect(fields[1])
	case "run":
		budget := uint64(0)
		if len(fields) == 2 {
			b, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("budget: %w", err)
			}
			budget = b
		}
		return st.run(budget)
	case "reset":
		st.cursor = 0
		fmt.Fprintln(st.out, "cursor reset")
		return nil
	case "save":
		if len(fields) != 2 {
			return fmt.Errorf("usage: save <session-id>")
		}
		return st.save(fields[1])
	case "load":
		if len(fields) != 2 {
			return fmt.Errorf("usage: load <session-id>")
		}
		return st.load(fields[1])
	case "best":
		return st.best()
	}
	return fmt.Errorf("unknown command %q — try help", fields[0])
}

func (st *replState) setField(field, value string) error {
	switch field {
	case "name":
		st.set.BaseName = value
	case "params":
		st.set.Params = splitParams(value)
	case "model":
		m, ok := types.ParseScoreModel(value)
		if !ok {
			return fmt.Errorf("unknown model %q", value)
		}
		st.set.Model = m
	case "alphabet":
		st.set.Alphabet = value
	case "separator":
		st.set.Separator = value
	case "min-len", "max-len", "top", "workers", "insert-at":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		switch field {
		case "min-len":
			st.set.MinLen = n
		case "max-len":
			st.set.MaxLen = n
		case "top":
			st.set.TopK = n
		case "workers":
			st.set.Workers = n
		case "insert-at":
			st.set.InsertAt = n
		}
	case "budget":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		st.set.Budget = n
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	// Geometry changes invalidate the resume cursor.
	switch field {
	case "alphabet", "min-len", "max-len", "name", "params", "separator", "insert-at":
		st.cursor = 0
	}
	return nil
}

func (st *replState) run(budget uint64) error {
	if st.set.BaseName == "" {
		return fmt.Errorf("set name first")
	}
	if budget != 0 {
		st.set.Budget = budget
	}
	res, err := executeSearch(&st.set, sessFromCursor(st.cursor))
	if err != nil {
		return err
	}
	st.cursor = res.NextCursor

	if st.store != nil && st.sessID != "" {
		if err := st.store.Archive(st.sessID, res.Best); err != nil {
			return err
		}
	}
	return emitResult(st.out, &st.set, res, false)
}

// sessFromCursor adapts a raw cursor into the session shape executeSearch
// resumes from.
func sessFromCursor(cursor uint64) *sessionstore.Session {
	if cursor == 0 {
		return nil
	}
	return &sessionstore.Session{Cursor: cursor}
}

func (st *replState) inspect(sig string) error {
	open := strings.IndexByte(sig, '(')
	if open < 0 || sig[len(sig)-1] != ')' {
		return fmt.Errorf("want name(type1,type2)")
	}
	canonical, err := sigbuild.New(sigbuild.Config{}).
		Build(sig[:open], splitParams(sig[open+1:len(sig)-1]), "")
	if err != nil {
		return err
	}
	return emitSelector(st.out, canonical, selector.Of(canonical), false)
}

func (st *replState) save(id string) error {
	if st.store == nil {
		return fmt.Errorf("no session database — start the repl with --db")
	}
	sess := &sessionstore.Session{
		ID:       id,
		BaseName: st.set.BaseName,
		Params:   st.set.Params,
		Model:    st.set.Model,
		Alphabet: st.set.Alphabet,
		MinLen:   st.set.MinLen,
		MaxLen:   st.set.MaxLen,
		Budget:   st.set.Budget,
		Cursor:   st.cursor,
	}
	if err := st.store.Save(sess); err != nil {
		return err
	}
	st.sessID = id
	fmt.Fprintf(st.out, "saved %s at cursor %s\n", id, utils.Utoa(st.cursor))
	return nil
}

func (st *replState) load(id string) error {
	if st.store == nil {
		return fmt.Errorf("no session database — start the repl with --db")
	}
	sess, err := st.store.Load(id)
	if err != nil {
		return err
	}
	st.set.BaseName = sess.BaseName
	st.set.Params = sess.Params
	st.set.Model = sess.Model
	st.set.Alphabet = sess.Alphabet
	st.set.MinLen = sess.MinLen
	st.set.MaxLen = sess.MaxLen
	st.set.Budget = sess.Budget
	st.cursor = sess.Cursor
	st.sessID = id
	fmt.Fprintf(st.out, "loaded %s at cursor %s\n", id, utils.Utoa(st.cursor))
	return nil
}

func (st *replState) best() error {
	if st.store == nil || st.sessID == "" {
		return fmt.Errorf("no active session — save or load one first")
	}
	best, err := st.store.BestKnown(st.sessID, st.set.TopK)
	if err != nil {
		return err
	}
	for i, c := range best {
		fmt.Fprintf(st.out, "%2d. 0x%s  %s\n", i+1, c.Selector.Hex(), c.Signature)
	}
	return nil
}

func (st *replState) printSetup() {
	fmt.Fprintf(st.out, "name      %s\n", st.set.BaseName)
	fmt.Fprintf(st.out, "params    %s\n", strings.Join(st.set.Params, ","))
	fmt.Fprintf(st.out, "model     %s\n", st.set.Model)
	fmt.Fprintf(st.out, "alphabet  %s\n", st.set.Alphabet)
	fmt.Fprintf(st.out, "lengths   %d..%d\n", st.set.MinLen, st.set.MaxLen)
	fmt.Fprintf(st.out, "budget    %s\n", utils.Utoa(st.set.Budget))
	fmt.Fprintf(st.out, "top       %d\n", st.set.TopK)
	fmt.Fprintf(st.out, "siblings  %d\n", len(st.set.Siblings))
	fmt.Fprintf(st.out, "cursor    %s\n", utils.Utoa(st.cursor))
}

func (st *replState) printHelp() {
	fmt.Fprint(st.out, `commands:
  set <field> <value>   fields: name params model alphabet separator
                        min-len max-len top workers insert-at budget
  show                  print current setup and cursor
  abi <path>            load sibling selectors from ABI JSON
  siblings <path>       load sibling selectors from a hex list
  sel <signature>       print the selector of a canonical signature
  run [budget]          mine one slice; repeat run to continue
  reset                 restart enumeration from the beginning
  save/load <id>        persist or restore a session (--db required)
  best                  show the active session's archived winners
  quit
`)
}
