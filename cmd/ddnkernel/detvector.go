package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/tongosu/ddonirang/fixed64"
)

var detVectorCommand = cli.Command{
	Name:  "detvector",
	Usage: "print and check the Fixed64 determinism vector seal",
	Description: `Computes DeterminismVectorV1 and compares it against the
pinned cross-platform baseline. Exits 0 on a match, 2 on mismatch —
the same contract the reference implementation's determinism-vector
example enforces.`,
	Action: runDetVector,
}

func runDetVector(ctx *cli.Context) error {
	seal := fixed64.ComputeDeterminismSeal()

	fmt.Printf("schema=%s\n", seal.Schema)
	status := "pass"
	if !seal.Pass {
		status = "fail"
	}
	fmt.Printf("status=%s\n", status)
	fmt.Printf("blake3=%s\n", seal.Blake3)
	fmt.Printf("raw_i64=%s\n", joinI64(seal.RawI64[:]))
	fmt.Printf("expected_raw_i64=%s\n", joinI64(seal.Expected[:]))

	if !seal.Pass {
		os.Exit(2)
	}
	return nil
}

func joinI64(values []int64) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", v)
	}
	return out
}
