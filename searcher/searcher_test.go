// Package searcher provides behavioral tests for the parallel driver:
// configuration validation, terminal-state flags, skip accounting, stop-flag
// cancellation, and cursor-exact resume.
package searcher

import (
	"context"
	"testing"

	"selmine/candgen"
	"selmine/constants"
	"selmine/control"
	"selmine/scorer"
	"selmine/sigbuild"
	"selmine/topk"
	"selmine/types"
)

func mustTemplate(t testing.TB, base string, params []string) *sigbuild.Template {
	t.Helper()
	tmpl, err := sigbuild.New(sigbuild.Config{Separator: constants.DefaultSeparator}).Template(base, params)
	if err != nil {
		t.Fatal(err)
	}
	return tmpl
}

func mustGenerator(t testing.TB, alphabet string, min, max int) *candgen.Generator {
	t.Helper()
	g, err := candgen.New(alphabet, min, max)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func zerosEvaluator(t testing.TB) *scorer.Evaluator {
	t.Helper()
	e, err := scorer.New(scorer.Config{Model: types.ModelLeadingZeroBytes})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// -----------------------------------------------------------------------------
// ░░ Configuration Validation ░░
// -----------------------------------------------------------------------------

func TestConfigValidation(t *testing.T) {
	tmpl := mustTemplate(t, "foo", []string{"uint256"})
	gen := mustGenerator(t, "ab", 1, 3)
	ev := zerosEvaluator(t)
	ctx := context.Background()

	if _, err := Search(ctx, Config{Generator: gen, Evaluator: ev}); err != ErrMissingComponent {
		t.Fatalf("nil template: err = %v, want ErrMissingComponent", err)
	}
	if _, err := Search(ctx, Config{Template: tmpl, Generator: gen, Evaluator: ev, TopK: constants.MaxTopK + 1}); err == nil {
		t.Fatal("oversized TopK accepted")
	}
	if _, err := Search(ctx, Config{Template: tmpl, Generator: gen, Evaluator: ev, Workers: constants.MaxWorkers + 1}); err == nil {
		t.Fatal("oversized worker count accepted")
	}
}

// -----------------------------------------------------------------------------
// ░░ Exhaustion & Budget ░░
// -----------------------------------------------------------------------------

func TestExhaustsSmallSpace(t *testing.T) {
	gen := mustGenerator(t, "ab", 1, 3) // 2 + 4 + 8 = 14 tokens
	res, err := Search(context.Background(), Config{
		Template:  mustTemplate(t, "foo", []string{"uint256"}),
		Generator: gen,
		Evaluator: zerosEvaluator(t),
		TopK:      5,
		Workers:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exhausted || res.EarlyStopped || res.Cancelled {
		t.Fatalf("flags = %+v, want exhausted only", res)
	}
	if res.CandidatesEvaluated != 14 {
		t.Fatalf("evaluated = %d, want 14", res.CandidatesEvaluated)
	}
	if res.NextCursor != gen.Total() {
		t.Fatalf("NextCursor = %d, want Total %d", res.NextCursor, gen.Total())
	}
	if len(res.Best) != 5 {
		t.Fatalf("len(Best) = %d, want 5", len(res.Best))
	}
	if gen.Cursor() != 0 {
		t.Fatal("caller generator was mutated")
	}
}

func TestBudgetStopsRun(t *testing.T) {
	gen := mustGenerator(t, "abcd", 1, 4) // 340 tokens
	res, err := Search(context.Background(), Config{
		Template:      mustTemplate(t, "foo", []string{"uint256"}),
		Generator:     gen,
		Evaluator:     zerosEvaluator(t),
		MaxCandidates: 100,
		Workers:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Exhausted {
		t.Fatal("partial budget must not report exhaustion")
	}
	if res.CandidatesEvaluated != 100 {
		t.Fatalf("evaluated = %d, want 100", res.CandidatesEvaluated)
	}
	if res.NextCursor != 100 {
		t.Fatalf("NextCursor = %d, want 100", res.NextCursor)
	}
}

func TestExhaustedGeneratorIsNoop(t *testing.T) {
	gen := mustGenerator(t, "ab", 1, 2)
	gen.Seek(gen.Total())
	res, err := Search(context.Background(), Config{
		Template:  mustTemplate(t, "foo", nil),
		Generator: gen,
		Evaluator: zerosEvaluator(t),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exhausted || res.CandidatesEvaluated != 0 || res.NextCursor != gen.Total() {
		t.Fatalf("unexpected result for exhausted generator: %+v", res)
	}
}

// -----------------------------------------------------------------------------
// ░░ Cancellation ░░
// -----------------------------------------------------------------------------

func TestRaisedFlagStopsImmediately(t *testing.T) {
	var flag control.Flag
	flag.Raise()
	res, err := Search(context.Background(), Config{
		Template:  mustTemplate(t, "foo", []string{"uint256"}),
		Generator: mustGenerator(t, "abcd", 1, 6),
		Evaluator: zerosEvaluator(t),
		Workers:   4,
		Stop:      &flag,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled {
		t.Fatal("raised flag must report Cancelled")
	}
	if res.CandidatesEvaluated != 0 {
		t.Fatalf("evaluated = %d after pre-raised flag, want 0", res.CandidatesEvaluated)
	}
	if res.NextCursor != 0 {
		t.Fatalf("NextCursor = %d, want 0 (nothing processed)", res.NextCursor)
	}
}

func TestCancelledContextBoundsEvaluations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	workers := 4
	res, err := Search(ctx, Config{
		Template:  mustTemplate(t, "foo", []string{"uint256"}),
		Generator: mustGenerator(t, "abcdefgh", 1, 6),
		Evaluator: zerosEvaluator(t),
		Workers:   workers,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled {
		t.Fatal("cancelled context must report Cancelled")
	}
	// Each worker notices within one context poll window.
	bound := uint64(workers) * constants.CancelPollInterval
	if res.CandidatesEvaluated > bound {
		t.Fatalf("evaluated = %d, want ≤ %d", res.CandidatesEvaluated, bound)
	}
}

// -----------------------------------------------------------------------------
// ░░ Early Stop ░░
// -----------------------------------------------------------------------------

func TestEarlyStopOnThreshold(t *testing.T) {
	// One leading zero byte hits roughly every 256 candidates; demand one.
	res, err := Search(context.Background(), Config{
		Template:  mustTemplate(t, "foo", []string{"uint256"}),
		Generator: mustGenerator(t, constants.CompactAlphabet, 1, 4),
		Evaluator: zerosEvaluator(t),
		Workers:   2,
		StopAtKey: 1 << 32,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.EarlyStopped {
		t.Fatal("threshold hit must report EarlyStopped")
	}
	if res.Cancelled || res.Exhausted {
		t.Fatalf("flags = %+v, want early-stop only", res)
	}
	if res.CandidatesEvaluated == 0 || res.CandidatesEvaluated != res.NextCursor {
		t.Fatalf("evaluated %d, cursor %d: run must cover exactly the prefix up to the hit",
			res.CandidatesEvaluated, res.NextCursor)
	}
	if len(res.Best) == 0 || res.Best[0].Key < 1<<32 {
		t.Fatal("best candidate must carry the threshold-reaching key")
	}
	if res.Best[0].Selector[0] != 0 {
		t.Fatalf("winner %s lacks a leading zero byte", res.Best[0].Selector.Hex())
	}
}

// -----------------------------------------------------------------------------
// ░░ Skip Accounting ░░
// -----------------------------------------------------------------------------

// A token spliced at offset 0 becomes the identifier head, so digit-led
// tokens are invalid there. A digits-only alphabet then skips everything.
func TestDigitLedTokensSkipped(t *testing.T) {
	tmpl, err := sigbuild.New(sigbuild.Config{Insert: true, InsertAt: 0}).Template("foo", []string{"uint256"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Search(context.Background(), Config{
		Template:  tmpl,
		Generator: mustGenerator(t, "0123456789", 1, 2),
		Evaluator: zerosEvaluator(t),
		Workers:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CandidatesEvaluated != 110 || res.Skipped != 110 {
		t.Fatalf("evaluated/skipped = %d/%d, want 110/110", res.CandidatesEvaluated, res.Skipped)
	}
	if len(res.Best) != 0 {
		t.Fatalf("Best has %d entries from all-skipped run", len(res.Best))
	}
	if !res.Exhausted {
		t.Fatal("all-skipped full walk is still exhaustion")
	}
}

// -----------------------------------------------------------------------------
// ░░ Resume ░░
// -----------------------------------------------------------------------------

// Two budgeted runs chained by NextCursor must cover exactly what one full
// run covers: merging their survivor sets reproduces the full run's Best.
func TestResumeCoversFullSpace(t *testing.T) {
	tmpl := mustTemplate(t, "bar", []string{"address", "uint256"})
	ev := zerosEvaluator(t)
	const k = 8

	full := mustGenerator(t, "abcdef", 1, 3)
	fullRes, err := Search(context.Background(), Config{
		Template: tmpl, Generator: full, Evaluator: ev, TopK: k, Workers: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	gen := mustGenerator(t, "abcdef", 1, 3)
	first, err := Search(context.Background(), Config{
		Template: tmpl, Generator: gen, Evaluator: ev, TopK: k, Workers: 1,
		MaxCandidates: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	gen.Seek(first.NextCursor)
	second, err := Search(context.Background(), Config{
		Template: tmpl, Generator: gen, Evaluator: ev, TopK: k, Workers: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Exhausted {
		t.Fatal("resumed run must exhaust the remainder")
	}
	if got := first.CandidatesEvaluated + second.CandidatesEvaluated; got != fullRes.CandidatesEvaluated {
		t.Fatalf("chained runs evaluated %d, full run %d", got, fullRes.CandidatesEvaluated)
	}

	merged := topk.New(k)
	for _, c := range first.Best {
		merged.Offer(c)
	}
	for _, c := range second.Best {
		merged.Offer(c)
	}
	got := merged.Drain()
	if len(got) != len(fullRes.Best) {
		t.Fatalf("merged len %d, full %d", len(got), len(fullRes.Best))
	}
	for i := range got {
		if got[i] != fullRes.Best[i] {
			t.Fatalf("rank %d: chained %+v, full %+v", i, got[i], fullRes.Best[i])
		}
	}
}
