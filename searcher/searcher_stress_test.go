// Package searcher stress validation: byte-identical results across worker
// counts and the full-pipeline mining vector for a known cheap selector.
package searcher

import (
	"context"
	"testing"

	"selmine/constants"
	"selmine/scorer"
	"selmine/types"
)

// -----------------------------------------------------------------------------
// ░░ Worker-Count Invariance ░░
// -----------------------------------------------------------------------------

// The same configuration must yield byte-identical ranked output for any
// worker count: stride sharding partitions the cursor space exactly and the
// total-order merge erases scheduling.
func TestWorkerCountInvariance(t *testing.T) {
	tmpl := mustTemplate(t, "claim", []string{"address", "uint256"})
	ev := zerosEvaluator(t)

	run := func(workers int) Result {
		res, err := Search(context.Background(), Config{
			Template:  tmpl,
			Generator: mustGenerator(t, "abcdefgh", 1, 4),
			Evaluator: ev,
			TopK:      16,
			Workers:   workers,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	want := run(1)
	if !want.Exhausted {
		t.Fatal("reference run must exhaust the space")
	}
	for _, workers := range []int{2, 3, 5, 8, 13} {
		got := run(workers)
		if got.CandidatesEvaluated != want.CandidatesEvaluated {
			t.Fatalf("workers=%d: evaluated %d, want %d",
				workers, got.CandidatesEvaluated, want.CandidatesEvaluated)
		}
		if len(got.Best) != len(want.Best) {
			t.Fatalf("workers=%d: len(Best) %d, want %d", workers, len(got.Best), len(want.Best))
		}
		for i := range got.Best {
			if got.Best[i] != want.Best[i] {
				t.Fatalf("workers=%d rank %d: %+v, want %+v",
					workers, i, got.Best[i], want.Best[i])
			}
		}
	}
}

// A threshold stop must be just as invariant: the run ends at the lowest
// candidate index reaching the key, so the evaluated prefix, the counters and
// every filler entry of Best are fixed by the configuration alone — not by
// which worker noticed the hit first.
func TestEarlyStopWorkerCountInvariance(t *testing.T) {
	tmpl := mustTemplate(t, "deposit", []string{"uint256"})
	ev := zerosEvaluator(t)

	run := func(workers int) Result {
		res, err := Search(context.Background(), Config{
			Template:  tmpl,
			Generator: mustGenerator(t, "0123456789abcdefghijklmnopqrstuvwxyz", 1, 4),
			Evaluator: ev,
			TopK:      16,
			Workers:   workers,
			StopAtKey: 2 << 32, // two leading zero bytes
		})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	want := run(1)
	if !want.EarlyStopped {
		t.Fatal("reference run must hit the threshold")
	}
	if want.CandidatesEvaluated != want.NextCursor {
		t.Fatalf("evaluated %d, cursor %d: stop prefix must be contiguous",
			want.CandidatesEvaluated, want.NextCursor)
	}
	for _, workers := range []int{2, 8} {
		got := run(workers)
		if got.CandidatesEvaluated != want.CandidatesEvaluated || got.Skipped != want.Skipped {
			t.Fatalf("workers=%d: evaluated/skipped %d/%d, want %d/%d", workers,
				got.CandidatesEvaluated, got.Skipped, want.CandidatesEvaluated, want.Skipped)
		}
		if got.NextCursor != want.NextCursor {
			t.Fatalf("workers=%d: NextCursor %d, want %d", workers, got.NextCursor, want.NextCursor)
		}
		if !got.EarlyStopped || got.Exhausted || got.Cancelled {
			t.Fatalf("workers=%d: flags %+v, want early-stop only", workers, got)
		}
		if len(got.Best) != len(want.Best) {
			t.Fatalf("workers=%d: len(Best) %d, want %d", workers, len(got.Best), len(want.Best))
		}
		for i := range got.Best {
			if got.Best[i] != want.Best[i] {
				t.Fatalf("workers=%d rank %d: %+v, want %+v",
					workers, i, got.Best[i], want.Best[i])
			}
		}
	}
}

// -----------------------------------------------------------------------------
// ░░ Known Mining Vector ░░
// -----------------------------------------------------------------------------

// deposit(uint256) with an appended alphanumeric token: the 3-character token
// "ps2" yields deposit_ps2(uint256) with selector 0000fee6 — two leading zero
// bytes. A full walk of tokens up to length 3 must surface it.
func TestMinesDepositPs2(t *testing.T) {
	if testing.Short() {
		t.Skip("walks ~240k keccak evaluations")
	}
	res, err := Search(context.Background(), Config{
		Template:  mustTemplate(t, "deposit", []string{"uint256"}),
		Generator: mustGenerator(t, constants.CompactAlphabet, 1, 3),
		Evaluator: zerosEvaluator(t),
		TopK:      32,
		Workers:   0, // one per CPU
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exhausted {
		t.Fatal("walk must exhaust the ≤3-character token space")
	}
	for _, c := range res.Best {
		if c.Token != "ps2" {
			continue
		}
		if c.Signature != "deposit_ps2(uint256)" {
			t.Fatalf("signature = %q", c.Signature)
		}
		if c.Selector.Hex() != "0000fee6" {
			t.Fatalf("selector = %s, want 0000fee6", c.Selector.Hex())
		}
		if c.Score != 2 {
			t.Fatalf("zero-byte count = %d, want 2", c.Score)
		}
		return
	}
	t.Fatal("token ps2 not surfaced in top-32")
}

// Prefix mining across worker counts: full-prefix hits rank above partial
// ones and results stay invariant.
func TestPrefixModelInvariance(t *testing.T) {
	ev, err := scorer.New(scorer.Config{
		Model:  types.ModelTargetPrefix,
		Prefix: []byte{0x00},
	})
	if err != nil {
		t.Fatal(err)
	}
	tmpl := mustTemplate(t, "mint", []string{"address"})

	run := func(workers int) Result {
		res, err := Search(context.Background(), Config{
			Template:  tmpl,
			Generator: mustGenerator(t, "abcdefghij", 1, 4),
			Evaluator: ev,
			TopK:      8,
			Workers:   workers,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	want := run(1)
	got := run(7)
	for i := range want.Best {
		if got.Best[i] != want.Best[i] {
			t.Fatalf("rank %d diverged across worker counts", i)
		}
	}
	if len(want.Best) > 0 && want.Best[0].Key == 1 && want.Best[0].Selector[0] != 0 {
		t.Fatal("full-prefix key without matching leading byte")
	}
}

// -----------------------------------------------------------------------------
// ░░ Benchmarks ░░
// -----------------------------------------------------------------------------

func BenchmarkSearchSingleWorker(b *testing.B) {
	tmpl := mustTemplate(b, "deposit", []string{"uint256"})
	ev := zerosEvaluator(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen := mustGenerator(b, constants.CompactAlphabet, 1, 2)
		Search(context.Background(), Config{
			Template: tmpl, Generator: gen, Evaluator: ev, Workers: 1, TopK: 8,
		})
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	tmpl := mustTemplate(b, "deposit", []string{"uint256"})
	ev := zerosEvaluator(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen := mustGenerator(b, constants.CompactAlphabet, 1, 3)
		Search(context.Background(), Config{
			Template: tmpl, Generator: gen, Evaluator: ev, Workers: 0, TopK: 8,
		})
	}
}
