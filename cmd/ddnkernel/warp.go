package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/tongosu/ddonirang/warp"
)

var warpCommand = cli.Command{
	Name:  "warp",
	Usage: "benchmark the multi-realm scheduler",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "realms", Usage: "number of realms (overrides Realms.Count)"},
		cli.Uint64Flag{Name: "steps", Usage: "steps per realm", Value: 1000},
		cli.Uint64Flag{Name: "seed", Usage: "master seed (overrides Realms.MasterSeed)"},
		cli.StringFlag{Name: "backend", Usage: "off|cpu|gpu", Value: "cpu"},
		cli.StringFlag{Name: "policy", Usage: "strict|fast", Value: "strict"},
		cli.IntFlag{Name: "threads", Usage: "worker count for gpu+fast", Value: 4},
		cli.BoolFlag{Name: "measure", Usage: "time the run instead of estimating"},
	},
	Action: runWarp,
}

func runWarp(ctx *cli.Context) error {
	cfg, err := loadRunnerConfig(ctx)
	if err != nil {
		return err
	}

	backend, err := parseBackend(ctx.String("backend"))
	if err != nil {
		return err
	}
	policy, err := parsePolicy(ctx.String("policy"))
	if err != nil {
		return err
	}

	realmCount := cfg.Realms.Count
	if ctx.IsSet("realms") {
		realmCount = ctx.Int("realms")
	}
	seed := cfg.Realms.MasterSeed
	if ctx.IsSet("seed") {
		seed = ctx.Uint64("seed")
	}

	input := warp.BenchInput{
		MasterSeed: seed,
		RealmCount: realmCount,
		Steps:      ctx.Uint64("steps"),
		StepBatch: warp.StepBatchSoA{
			RealmIDs: identityRealmIDs(realmCount),
			Deltas:   constantDeltas(realmCount, 1),
		},
	}

	out, err := warp.RunWarpBench(input, backend, policy, ctx.Int("threads"), ctx.Bool("measure"))
	if err != nil {
		return err
	}

	fmt.Printf("realm_count=%d step_count=%d cpu_ms=%d gpu_ms=%d\n", out.RealmCount, out.StepCount, out.CPUMillis, out.GPUMillis)
	return nil
}

func identityRealmIDs(n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i)
	}
	return ids
}

func constantDeltas(n int, value int64) []int64 {
	deltas := make([]int64, n)
	for i := range deltas {
		deltas[i] = value
	}
	return deltas
}

func parseBackend(s string) (warp.Backend, error) {
	switch s {
	case "off":
		return warp.BackendOff, nil
	case "cpu":
		return warp.BackendCPU, nil
	case "gpu":
		return warp.BackendGPU, nil
	default:
		return 0, fmt.Errorf("ddnkernel warp: unknown backend %q", s)
	}
}

func parsePolicy(s string) (warp.Policy, error) {
	switch s {
	case "strict":
		return warp.PolicyStrict, nil
	case "fast":
		return warp.PolicyFast, nil
	default:
		return 0, fmt.Errorf("ddnkernel warp: unknown policy %q", s)
	}
}
