// Package runnerconfig loads the ddnkernel CLI's TOML configuration,
// in the same NormFieldName/FieldToKey/MissingField shape the node's
// own config loader uses, so unknown fields are rejected with the same
// kind of diagnostic rather than silently ignored.
package runnerconfig

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/tongosu/ddonirang/realms"
)

// tomlSettings ensures TOML keys match Go struct field names exactly
// and rejects any field the schema doesn't recognize.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see %s#%s", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field %q is not defined in %s%s", field, rt.String(), link)
	},
}

// EngineConfig controls the builtin run scenario's tick count and
// starting RngSeed; the cascade's pass bound is a fixed kernel
// invariant (alrim.MaxPasses), not something a runner config can
// change.
type EngineConfig struct {
	Ticks   uint64 `toml:",omitempty"`
	RngSeed uint64 `toml:",omitempty"`
}

// GeoulConfig controls the on-disk frame-log bundle.
type GeoulConfig struct {
	Dir string
}

// RealmsConfig controls the multi-realm scheduler.
type RealmsConfig struct {
	Count      int
	MasterSeed uint64
	Thread     string `toml:",omitempty"`
	Workers    int    `toml:",omitempty"`
}

// Config is the full ddnkernel runner configuration.
type Config struct {
	Engine EngineConfig
	Geoul  GeoulConfig
	Realms RealmsConfig
}

// Defaults returns the configuration ddnkernel runs with absent an
// explicit --config file.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{Ticks: 100, RngSeed: 1},
		Geoul:  GeoulConfig{Dir: "./geoul-log"},
		Realms: RealmsConfig{Count: 1, MasterSeed: 1, Thread: "seq"},
	}
}

// Load reads and decodes a TOML file into cfg, starting from cfg's
// current (usually default) values.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Dump renders cfg back to its TOML form.
func Dump(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// ThreadMode resolves the configured thread mode into a realms.ThreadMode.
func (c Config) ThreadMode() (realms.ThreadMode, error) {
	switch c.Realms.Thread {
	case "", "seq":
		return realms.Seq(), nil
	case "parallel":
		workers := c.Realms.Workers
		if workers <= 0 {
			workers = 4
		}
		return realms.Parallel(workers), nil
	default:
		return realms.ThreadMode{}, fmt.Errorf("runnerconfig: unknown thread mode %q", c.Realms.Thread)
	}
}
