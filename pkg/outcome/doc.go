// Package outcome is the data boundary of the ranking engine.
//
// It turns what happened on the mat into the one structure the engine reads:
// a square, non-negative, zero-diagonal weight matrix W aligned to a fixed
// list of competitors, where W[i][j] is the accumulated strength of evidence
// that competitor i beat competitor j.
//
// # Evidence
//
// Evidence is a tagged variant with two kinds:
//
//   - [Direct]: a recorded result between the two competitors.
//   - [CommonOpponent]: an advantage inferred through an opponent both faced.
//
// [Resolve] folds evidence into a [Matrix] exactly once. For every pair only
// the net direction carries weight, so a contested pair is never penalized in
// both directions. Common-opponent evidence is discounted and is used in full
// only for pairs that never met; when the pair did meet it can reinforce the
// direct winner but never point the other way. The weights are configurable
// through [Weights].
//
// [BuildEvidence] derives both kinds from a flat list of [Match] results.
//
// # Validation
//
// [NewMatrix] rejects malformed input (dimension mismatch, negative or
// non-finite weights, self-loops, duplicate IDs). The engine assumes a
// validated matrix and never mutates it, which is what makes concurrent reads
// from parallel search runs safe without locking.
//
// # Group files
//
// A [Group] is one comparison group (for example one weight class) as stored
// on disk or posted to the API:
//
//	{
//	  "name": "133",
//	  "competitors": [{"id": "a", "name": "Alpha", "team": "PSU", "wins": 20, "losses": 1}],
//	  "matches": [{"winner": "a", "loser": "b", "result": "Dec 3-2"}]
//	}
package outcome
