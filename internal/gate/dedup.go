// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gate

import "github.com/wgold/splitmon/pkg/types"

type dedupKey struct {
	ticker   string
	ratioNew int
	ratioOld int
	policy   types.RoundingPolicy
}

// Dedup collapses accepted records that describe the same event: identical
// (ticker, ratio, rounding policy). The retained record is the one with a
// known effective date, then the most recently filed. Input order is
// preserved for the survivors.
func Dedup(records []types.Record) []types.Record {
	best := make(map[dedupKey]int)
	var out []types.Record

	for _, r := range records {
		k := dedupKey{
			ticker:   r.Security.Ticker,
			ratioNew: r.Extraction.RatioNew,
			ratioOld: r.Extraction.RatioOld,
			policy:   r.Extraction.RoundingPolicy,
		}
		i, ok := best[k]
		if !ok {
			best[k] = len(out)
			out = append(out, r)
			continue
		}
		if preferred(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

func preferred(candidate, incumbent types.Record) bool {
	cHas := !candidate.Extraction.EffectiveDate.IsZero()
	iHas := !incumbent.Extraction.EffectiveDate.IsZero()
	if cHas != iHas {
		return cHas
	}
	return candidate.Filing.FiledAt.After(incumbent.Filing.FiledAt)
}
