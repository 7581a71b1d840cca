package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/tongosu/ddonirang/geoul"
)

var replayCommand = cli.Command{
	Name:      "replay",
	Usage:     "verify a recorded Geoul bundle by replaying it against the builtin scenario",
	ArgsUsage: "<geoul-dir>",
	Flags: []cli.Flag{
		cli.Uint64Flag{
			Name:  "until",
			Usage: "last madi (inclusive) to replay; defaults to the bundle's final frame",
		},
		cli.Uint64Flag{
			Name:  "seek",
			Usage: "first madi to compare hashes from (frames before it still replay, just unchecked)",
		},
	},
	Action: runReplay,
}

func runReplay(ctx *cli.Context) error {
	dir := ctx.Args().First()
	if dir == "" {
		return fmt.Errorf("ddnkernel replay: missing <geoul-dir> argument")
	}

	reader, err := geoul.OpenBundleReader(dir)
	if err != nil {
		return err
	}
	frameCount := reader.FrameCount()
	if frameCount == 0 {
		return fmt.Errorf("ddnkernel replay: E_REPLAY_EMPTY_LOG geoul log has no frames")
	}

	until := frameCount - 1
	if ctx.IsSet("until") {
		until = ctx.Uint64("until")
	}
	seek := ctx.Uint64("seek")

	mismatch, err := geoul.VerifyReplay(reader, counterIyagi{}, until, seek)
	if err != nil {
		return err
	}

	if mismatch != nil {
		fmt.Println("verify_ok=false")
		fmt.Printf("first_diverge_madi=%d\n", mismatch.Madi)
		fmt.Printf("expected_state_hash=blake3:%x\n", mismatch.ExpectedHash)
		fmt.Printf("actual_state_hash=blake3:%x\n", mismatch.ActualHash)
		fmt.Printf("patch_hex=%s\n", mismatch.PatchHex)
		return fmt.Errorf("ddnkernel replay: E_REPLAY_MISMATCH madi=%d", mismatch.Madi)
	}

	fmt.Println("verify_ok=true")
	fmt.Println("first_diverge_madi=null")
	return nil
}
