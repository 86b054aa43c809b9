// ════════════════════════════════════════════════════════════════════════════════════════════════
// Selector Mining Engine - Result Rendering
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: Table & JSON Output
//
// Description:
//   Human-facing table rendering (ranked candidates, per-model score column, run
//   terminal state) and machine-facing JSON for scripting. The JSON shape is stable:
//   tooling may depend on it.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sugawarayuuta/sonnet"

	"selmine/searcher"
	"selmine/sessionstore"
	"selmine/types"
	"selmine/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN RESULTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// scoreColumn names the model-facing detail column.
func scoreColumn(model types.ScoreModel) string {
	switch model {
	case types.ModelNumericRank:
		return "DISPATCH GAS"
	case types.ModelTargetPrefix:
		return "MATCHED BYTES"
	default:
		return "ZERO BYTES"
	}
}

// runState renders the terminal state of a search.
func runState(res searcher.Result) string {
	switch {
	case res.EarlyStopped:
		return "early stop (threshold reached)"
	case res.Cancelled:
		return "cancelled (partial results)"
	case res.Exhausted:
		return "exhausted (searched the full token space)"
	default:
		return "budget spent (resume at cursor " + utils.Utoa(res.NextCursor) + ")"
	}
}

type jsonCandidate struct {
	Rank      int    `json:"rank"`
	Token     string `json:"token"`
	Signature string `json:"signature"`
	Selector  string `json:"selector"`
	Key       uint64 `json:"key"`
	Score     int64  `json:"score"`
}

type jsonResult struct {
	Model      string          `json:"model"`
	Evaluated  uint64          `json:"candidates_evaluated"`
	Skipped    uint64          `json:"skipped"`
	NextCursor uint64          `json:"next_cursor"`
	Exhausted  bool            `json:"exhausted"`
	EarlyStop  bool            `json:"early_stopped"`
	Cancelled  bool            `json:"cancelled"`
	Results    []jsonCandidate `json:"results"`
}

func emitResult(w io.Writer, set *mineSetup, res searcher.Result, asJSON bool) error {
	if asJSON {
		out := jsonResult{
			Model:      set.Model.String(),
			Evaluated:  res.CandidatesEvaluated,
			Skipped:    res.Skipped,
			NextCursor: res.NextCursor,
			Exhausted:  res.Exhausted,
			EarlyStop:  res.EarlyStopped,
			Cancelled:  res.Cancelled,
			Results:    make([]jsonCandidate, 0, len(res.Best)),
		}
		for i, c := range res.Best {
			out.Results = append(out.Results, jsonCandidate{
				Rank:      i + 1,
				Token:     c.Token,
				Signature: c.Signature,
				Selector:  "0x" + c.Selector.Hex(),
				Key:       c.Key,
				Score:     c.Score,
			})
		}
		return encodeJSON(w, out)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Token", "Signature", "Selector", scoreColumn(set.Model)})
	for i, c := range res.Best {
		sel := "0x" + c.Selector.Hex()
		if i == 0 {
			sel = color.GreenString(sel)
		}
		table.Append([]string{
			utils.Itoa(i + 1), c.Token, c.Signature, sel, utils.Itoa(int(c.Score)),
		})
	}
	table.SetFooter([]string{"", "", "",
		utils.Utoa(res.CandidatesEvaluated) + " evaluated",
		utils.Utoa(res.Skipped) + " skipped"})
	table.Render()

	fmt.Fprintln(w, runState(res))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SELECTOR INSPECTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func emitSelector(w io.Writer, signature string, sel types.Selector, asJSON bool) error {
	if asJSON {
		return encodeJSON(w, struct {
			Signature string `json:"signature"`
			Selector  string `json:"selector"`
			ZeroBytes int    `json:"leading_zero_bytes"`
		}{signature, "0x" + sel.Hex(), sel.LeadingZeroBytes()})
	}
	fmt.Fprintf(w, "%s  %s  (%d leading zero bytes)\n",
		color.CyanString("0x"+sel.Hex()), signature, sel.LeadingZeroBytes())
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SESSION LISTING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func emitSessions(w io.Writer, sessions []sessionstore.Session, asJSON bool) error {
	if asJSON {
		type jsonSession struct {
			ID        string `json:"id"`
			BaseName  string `json:"base_name"`
			Model     string `json:"model"`
			Cursor    uint64 `json:"cursor"`
			Evaluated uint64 `json:"evaluated"`
			UpdatedAt string `json:"updated_at"`
		}
		out := make([]jsonSession, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, jsonSession{
				ID: s.ID, BaseName: s.BaseName, Model: s.Model.String(),
				Cursor: s.Cursor, Evaluated: s.Evaluated,
				UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
			})
		}
		return encodeJSON(w, out)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Session", "Name", "Model", "Cursor", "Evaluated", "Updated"})
	for _, s := range sessions {
		table.Append([]string{
			s.ID, s.BaseName, s.Model.String(),
			utils.Utoa(s.Cursor), utils.Utoa(s.Evaluated),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// JSON ENCODING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func encodeJSON(w io.Writer, v any) error {
	data, err := sonnet.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
