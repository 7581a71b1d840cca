package main

import (
	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/sam"
)

// counterIyagi is the builtin reference scenario ddnkernel's run and
// replay commands exercise: it keeps a single "counter" resource,
// incrementing it by the snapshot's RngSeed parity each tick and
// copying the tick's last key name into "last_key", so a replayed
// bundle has something nontrivial to verify against. It never reads
// wall-clock time or any other nondeterministic source, satisfying the
// closed-input contract.
type counterIyagi struct{}

func (counterIyagi) RunStartup(world iyagi.WorldReader) iyagi.Patch {
	return iyagi.Patch{
		Ops:    []iyagi.PatchOp{iyagi.SetResourceFixed64("counter", fixed64.Zero)},
		Origin: iyagi.SystemOrigin("ddnkernel.startup"),
	}
}

func (counterIyagi) RunUpdate(world iyagi.WorldReader, input *sam.InputSnapshot) iyagi.Patch {
	current, _ := world.GetResourceFixed64("counter")
	step := fixed64.One
	if input.RngSeed%2 == 0 {
		step = fixed64.FromI64(2)
	}

	ops := []iyagi.PatchOp{
		iyagi.SetResourceFixed64("counter", current.Add(step)),
	}
	if input.LastKeyName != "" {
		ops = append(ops, iyagi.SetResourceJSON("last_key", `"`+input.LastKeyName+`"`))
	}
	return iyagi.Patch{Ops: ops, Origin: iyagi.SystemOrigin("ddnkernel.update")}
}
