// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ PARALLEL SELECTOR SEARCH
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Deterministic Top-K Driver
//
// Description:
//   Drives the full mining pipeline: enumerate variant tokens, render canonical
//   signatures, hash, score, and keep the K best candidates — across N workers with
//   results that are byte-identical for ANY worker count.
//
// Determinism model:
//   - The candidate space is an index range [0, budget) over the generator's cursor
//     space. Worker w owns exactly the indices w, w+N, w+2N, … (stride sharding), so
//     the union over workers is a partition: no index is evaluated twice or skipped
//     regardless of scheduling.
//   - Each worker keeps a private top-K; the final merge re-offers every survivor
//     into one list under a total order (key desc, shorter token, lex smaller), so
//     merge order cannot influence the result.
//   - A threshold stop (StopAtKey) runs in two passes. The first pass only locates
//     the lowest candidate index whose key reaches the threshold, published via a
//     CAS-min: a worker cannot quit before covering its owned indices below any
//     published hit, so the minimum is exact regardless of scheduling. The second
//     pass replays exactly the prefix [0, minHit] with no threshold, which is the
//     plain partition path above. Counters, fillers and the resume cursor therefore
//     never depend on how far individual workers ran ahead in the first pass.
//
// Termination states (all normal, all carry best-so-far):
//   - Exhausted:    the budget covered the entire remaining token space
//   - EarlyStopped: a candidate reached the configured threshold key
//   - Cancelled:    context cancelled or external stop flag raised
//   - Budget spent: none of the above flags; resume via NextCursor
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package searcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"selmine/candgen"
	"selmine/constants"
	"selmine/control"
	"selmine/scorer"
	"selmine/selector"
	"selmine/sigbuild"
	"selmine/topk"
	"selmine/types"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ERRORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	// ErrMissingComponent marks a Config without a template, generator or
	// evaluator. Fatal configuration error, surfaced before any work starts.
	ErrMissingComponent = errors.New("searcher: missing pipeline component")

	// ErrBadTopK marks a result capacity outside [1, MaxTopK].
	ErrBadTopK = errors.New("searcher: top-K capacity out of range")

	// ErrBadWorkers marks an explicit worker count above MaxWorkers.
	ErrBadWorkers = errors.New("searcher: worker count out of range")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION & RESULT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Config assembles one search run. Template, Generator and Evaluator are
// mandatory; everything else has working defaults. The generator's current
// cursor is the resume point — Seek() it before calling Search to continue a
// persisted session.
type Config struct {
	Template  *sigbuild.Template
	Generator *candgen.Generator
	Evaluator *scorer.Evaluator

	// TopK is the ranked result capacity (default DefaultTopK, max MaxTopK).
	TopK int

	// Workers sets parallelism. AutoWorkers (0) means one per CPU; the
	// effective count never exceeds the candidate budget.
	Workers int

	// MaxCandidates bounds this run's evaluations (0 = DefaultMaxCandidates).
	// The run consumes min(MaxCandidates, Remaining()) cursor positions.
	MaxCandidates uint64

	// StopAtKey, when nonzero, ends the search at the first candidate whose
	// normalized rank key reaches it: the run reports exactly the candidates
	// at indices up to and including the lowest such hit, for any worker
	// count. Locating that hit costs up to one extra evaluation of the
	// stopped prefix.
	StopAtKey uint64

	// Stop is an optional external kill switch (e.g. wired to SIGINT).
	// Nil gets a private flag. A raised flag always means cancellation:
	// threshold stops never raise it, and Search never Resets it.
	Stop *control.Flag

	// Progress, when non-nil, receives periodic evaluated-count flushes for
	// live reporting. The final exact count is in Result.
	Progress *atomic.Uint64
}

// Result is the terminal state of one search run. Best is ordered strictly
// better-first and is identical for any worker count given the same Config.
type Result struct {
	Best []types.Candidate

	// CandidatesEvaluated counts every cursor position consumed, including
	// skipped ones. Skipped counts the subset discarded without scoring
	// output: render-invalid tokens and sibling collisions.
	CandidatesEvaluated uint64
	Skipped             uint64

	// NextCursor is where a resumed run continues. It is the end of the
	// contiguous fully-processed prefix: after an interrupted run a resume
	// may re-evaluate a few candidates some workers had gotten ahead on,
	// but never misses one.
	NextCursor uint64

	Exhausted    bool
	EarlyStopped bool
	Cancelled    bool
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SEARCH DRIVER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Search runs the full pipeline to one of the four terminal states. The
// caller's generator is never mutated: workers walk private clones and the
// resume position is reported through Result.NextCursor.
func Search(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Template == nil || cfg.Generator == nil || cfg.Evaluator == nil {
		return Result{}, ErrMissingComponent
	}
	k := cfg.TopK
	if k == 0 {
		k = constants.DefaultTopK
	}
	if k < 1 || k > constants.MaxTopK {
		return Result{}, fmt.Errorf("%w: %d", ErrBadTopK, cfg.TopK)
	}
	if cfg.Workers < 0 || cfg.Workers > constants.MaxWorkers {
		return Result{}, fmt.Errorf("%w: %d", ErrBadWorkers, cfg.Workers)
	}

	start := cfg.Generator.Cursor()
	remaining := cfg.Generator.Remaining()
	budget := cfg.MaxCandidates
	if budget == 0 {
		budget = constants.DefaultMaxCandidates
	}
	if budget > remaining {
		budget = remaining
	}
	if budget == 0 {
		return Result{NextCursor: start, Exhausted: remaining == 0}, nil
	}

	workers := cfg.Workers
	if workers == constants.AutoWorkers {
		workers = runtime.NumCPU()
		if workers > constants.MaxWorkers {
			workers = constants.MaxWorkers
		}
	}
	if uint64(workers) > budget {
		workers = int(budget)
	}

	flag := cfg.Stop
	if flag == nil {
		flag = new(control.Flag)
	}

	shared := &searchState{
		template:   cfg.Template,
		evaluator:  cfg.Evaluator,
		start:      start,
		budget:     budget,
		stride:     uint64(workers),
		stopAtKey:  cfg.StopAtKey,
		topK:       k,
		flag:       flag,
		progress:   cfg.Progress,
		exhaustive: budget == remaining,
	}
	shared.hitIdx.Store(noHit)

	outs := runPass(ctx, shared, cfg.Generator, workers)
	hit := shared.hitIdx.Load()
	if hit == noHit {
		return assemble(ctx, shared, outs), nil
	}

	// Threshold hit: the first pass fixed the exact stop prefix but its
	// counters and lists carry scheduling-dependent overrun. Replay the
	// prefix without a threshold; that path is worker-count invariant.
	prefix := &searchState{
		template:  cfg.Template,
		evaluator: cfg.Evaluator,
		start:     start,
		budget:    hit + 1,
		stride:    shared.stride,
		topK:      k,
		flag:      flag,
	}
	prefix.hitIdx.Store(noHit)
	if uint64(workers) > prefix.budget {
		workers = int(prefix.budget)
		prefix.stride = uint64(workers)
	}
	res := assemble(ctx, prefix, runPass(ctx, prefix, cfg.Generator, workers))
	res.EarlyStopped = !res.Cancelled
	return res, nil
}

// runPass fans the index range out over private generator clones and waits
// for every worker to report.
func runPass(ctx context.Context, s *searchState, gen *candgen.Generator, workers int) []workerOut {
	outs := make([]workerOut, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			outs[w] = runWorker(ctx, s, gen.Clone(), uint64(w))
		}(w)
	}
	wg.Wait()
	return outs
}

// noHit is the hitIdx sentinel: index 0 is a legal hit, so absence needs the
// top of the range.
const noHit = ^uint64(0)

// searchState is the read-only run description shared by all workers, plus
// the run-wide atomics they coordinate through.
type searchState struct {
	template   *sigbuild.Template
	evaluator  *scorer.Evaluator
	start      uint64
	budget     uint64
	stride     uint64
	stopAtKey  uint64
	topK       int
	flag       *control.Flag
	progress   *atomic.Uint64
	exhaustive bool // budget reaches the end of the token space

	hitIdx    atomic.Uint64 // lowest threshold-hit index seen so far (CAS-min)
	cancelled atomic.Bool
}

// publishHit lowers hitIdx to idx unless an earlier hit is already recorded.
func (s *searchState) publishHit(idx uint64) {
	for {
		cur := s.hitIdx.Load()
		if idx >= cur || s.hitIdx.CompareAndSwap(cur, idx) {
			return
		}
	}
}

// workerOut is one worker's private result, merged after Wait.
type workerOut struct {
	list      *topk.List
	evaluated uint64
	skipped   uint64
	nextIdx   uint64 // first candidate index this worker did NOT process
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WORKER LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runWorker walks candidate indices w, w+N, w+2N, … up to the budget. All
// per-candidate state lives in stack or reused buffers: the only allocations
// after warm-up are the Token/Signature strings of candidates that actually
// enter the top-K.
func runWorker(ctx context.Context, s *searchState, gen *candgen.Generator, w uint64) workerOut {
	var (
		token [constants.MaxTokenLen]byte
		sig   = make([]byte, 0, s.template.MaxRenderLen(constants.MaxTokenLen))
		h     = selector.NewHasher()
		list  = topk.New(s.topK)

		evaluated, skipped uint64
		pending            uint64
		poll               = uint64(constants.CancelPollInterval)
	)

	idx := w
	for ; idx < s.budget; idx += s.stride {
		// Stop flag is one atomic load — checked every candidate. The
		// context channel probe is amortized across the poll window.
		if s.flag.Stopped() {
			break
		}
		// Past a published threshold hit nothing this worker owns can be
		// part of the stop prefix, and everything below any published hit
		// is still owed. That covering rule is what makes the first-pass
		// minimum exact.
		if s.stopAtKey != 0 && idx > s.hitIdx.Load() {
			break
		}
		if poll--; poll == 0 {
			poll = constants.CancelPollInterval
			if ctx.Err() != nil {
				s.cancelled.Store(true)
				s.flag.Raise()
				break
			}
		}

		n, ok := gen.TokenAt(s.start+idx, token[:])
		if !ok {
			// Unreachable while budget ≤ Remaining; treat as exhaustion.
			break
		}
		evaluated++
		pending++
		if pending == constants.CounterFlushInterval {
			if s.progress != nil {
				s.progress.Add(pending)
			}
			pending = 0
		}

		rendered, err := s.template.Render(sig, token[:n])
		if err != nil {
			skipped++
			continue
		}
		sig = rendered[:0]

		sel := h.Selector(rendered)
		key, detail, usable := s.evaluator.Score(sel)
		if !usable {
			skipped++
			continue
		}

		if key >= list.Floor() {
			list.Offer(types.Candidate{
				Token:     string(token[:n]),
				Signature: string(rendered),
				Selector:  sel,
				Key:       key,
				Score:     detail,
			})
		}

		if s.stopAtKey != 0 && key >= s.stopAtKey {
			s.publishHit(idx)
			idx += s.stride
			break
		}
	}

	if s.progress != nil && pending > 0 {
		s.progress.Add(pending)
	}
	// nextIdx only feeds the contiguous-prefix minimum, which is capped at
	// the budget anyway.
	if idx > s.budget {
		idx = s.budget
	}
	return workerOut{list: list, evaluated: evaluated, skipped: skipped, nextIdx: idx}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MERGE & TERMINAL STATE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func assemble(ctx context.Context, s *searchState, outs []workerOut) Result {
	merged := topk.New(s.topK)
	var res Result
	minNext := s.budget
	for w := range outs {
		merged.Merge(outs[w].list)
		res.CandidatesEvaluated += outs[w].evaluated
		res.Skipped += outs[w].skipped
		// The contiguous processed prefix ends at the smallest index any
		// worker has yet to process.
		if outs[w].nextIdx < minNext {
			minNext = outs[w].nextIdx
		}
	}
	res.Best = merged.Drain()
	res.NextCursor = s.start + minNext

	res.Cancelled = s.cancelled.Load() || ctx.Err() != nil || s.flag.Stopped()
	completed := minNext >= s.budget
	res.Exhausted = completed && s.exhaustive && !res.Cancelled
	return res
}
