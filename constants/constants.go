// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Engine-Wide Mining Tunables & Defaults
//
// Purpose:
//   - Defines the default search budget, alphabets, ranking capacity and
//     dispatch cost seed shared by the CLI and the search engine.
//
// Notes:
//   - Gas-related values here are DEFAULT SEEDS for injectable cost tables,
//     never constants consumed directly by scoring logic. Compiler versions
//     and optimizer runs-levels move these numbers, so the scorer only ever
//     sees a caller-supplied table.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Selector Geometry ───────────────────────────

const (
	// SelectorSize is the byte width of a dispatch selector: the first four
	// bytes of the keccak-256 digest of the canonical signature, never the
	// last four.
	SelectorSize = 4

	// DigestSize is the keccak-256 output width in bytes.
	DigestSize = 32
)

// ───────────────────────────── Variant Alphabets ───────────────────────────

const (
	// DefaultAlphabet enumerates every byte legal inside a Solidity-style
	// identifier tail. Ordering is significant: it fixes the deterministic
	// lexicographic enumeration order of the candidate generator.
	DefaultAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

	// CompactAlphabet drops the underscore for callers mining tokens that
	// read as plain suffixes (e.g. deposit_ps2 from token "ps2").
	CompactAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultSeparator joins the base name and an appended variant token.
	DefaultSeparator = "_"

	// MaxTokenLen caps variant token length. 10 alphanumeric characters is
	// already ~8.4e17 candidates, far past any realistic budget; the cap
	// keeps cursor arithmetic inside uint64 with headroom.
	MaxTokenLen = 10
)

// ───────────────────────────── Search Budget ───────────────────────────────

const (
	// DefaultMinTokenLen / DefaultMaxTokenLen bound the default enumeration.
	// Shorter tokens go first: they add fewer calldata bytes and read more
	// like names a human would ship.
	DefaultMinTokenLen = 1
	DefaultMaxTokenLen = 4

	// DefaultMaxCandidates bounds a run when the caller supplies no budget.
	// ~16.7M keccak evaluations finishes in seconds on commodity cores.
	DefaultMaxCandidates = 1 << 24

	// DefaultTopK is the ranked result capacity carried through a search.
	DefaultTopK = 10

	// MaxTopK caps result capacity so per-worker lists stay cache-resident.
	MaxTopK = 256
)

// ───────────────────────────── Worker Scheduling ───────────────────────────

const (
	// AutoWorkers requests one worker per available CPU.
	AutoWorkers = 0

	// MaxWorkers caps explicit worker requests. Beyond physical parallelism
	// extra workers only add merge work.
	MaxWorkers = 256

	// CancelPollInterval is the candidate count between context polls.
	// The stop flag itself is checked every candidate; the (marginally
	// costlier) context channel probe is amortized across this window.
	CancelPollInterval = 256

	// CounterFlushInterval is the candidate count between flushes of a
	// worker's private evaluated counter into the shared atomic total.
	CounterFlushInterval = 1024
)

// ───────────────────────────── Dispatch Cost Seeds ─────────────────────────

const (
	// LinearStepGasSeed seeds linear dispatch cost growth: one selector
	// comparison in an unsplit dispatcher costs roughly 22 gas
	// (DUP1 PUSH4 EQ PUSH JUMPI). Used only when no measured table is
	// injected; a supplied CostTable always wins.
	LinearStepGasSeed = 22

	// ZeroByteCalldataGas / NonZeroByteCalldataGas are the intrinsic
	// calldata costs per byte that make leading zero bytes worth mining.
	// Reporting only; scoring counts bytes, not gas.
	ZeroByteCalldataGas    = 4
	NonZeroByteCalldataGas = 16
)
