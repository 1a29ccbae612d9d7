// Command dmgcore is the host binary around the core: it owns every
// concern spec.md carves out of the core package proper (§1) — CLI flag
// parsing, ROM loading from disk, and the unpaced headless run loop that
// races through M-cycles. None of that lives in the dmgcore/cpu/mmu/ppu
// packages; this file is the "external collaborator" those packages are
// contracted against (§6).
//
// Grounded on jeebie's cmd/jeebie/main.go: same urfave/cli shape
// (app.Flags, app.Action), restated around the headless-only scope this
// core supports (no windowing backend is part of this spec, §1 Non-goal).
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/dmgcore"
	"github.com/valerio/dmgcore/mmu"
	"github.com/valerio/dmgcore/serial"
)

// mCyclesPerFrame is 70224 T-cycles (154 lines * 456 dots) divided into
// groups of 4, the unit Core.Tick advances by.
const mCyclesPerFrame = 70224 / 4

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Description = "Headless cycle-accurate DMG core runner"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run",
			Value: 60,
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log per-instruction CPU state traces at debug level",
		},
		cli.BoolFlag{
			Name:  "strict",
			Usage: "Fail fast on access to the FEA0-FEFF unusable range",
		},
		cli.BoolFlag{
			Name:  "print-serial",
			Usage: "Print accumulated serial output to stdout on exit",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().Get(0)

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	cartridge := newCartridge(rom)

	opts := []dmgcore.Option{}
	if c.Bool("strict") {
		opts = append(opts, dmgcore.WithStrictAddressing())
	}
	if c.Bool("trace") {
		opts = append(opts, dmgcore.WithSink(serial.NewLineLogger(nil)))
	}

	core := dmgcore.New(cartridge, opts...)

	frames := c.Int("frames")
	for f := 0; f < frames; f++ {
		for m := 0; m < mCyclesPerFrame; m++ {
			result := core.Tick()
			if result.Fault != nil {
				flushSerial(core)
				return fmt.Errorf("core fault at frame %d: %w", f, result.Fault)
			}
		}
	}

	if c.Bool("print-serial") {
		flushSerial(core)
	}

	return nil
}

// newCartridge picks a Mapper from the cartridge header's type byte at
// 0x0147, the one piece of header parsing the core itself needs nothing
// more than (full header parsing is explicitly out of scope, §1).
func newCartridge(rom []byte) mmu.Mapper {
	if len(rom) <= 0x0147 {
		return mmu.NewRomOnly(rom)
	}

	switch rom[0x0147] {
	case 0x01, 0x02, 0x03: // MBC1, MBC1+RAM, MBC1+RAM+BATTERY
		ramSize := ramSizeFromHeader(rom)
		return mmu.NewMBC1(rom, ramSize)
	default:
		return mmu.NewRomOnly(rom)
	}
}

func ramSizeFromHeader(rom []byte) int {
	if len(rom) <= 0x0149 {
		return 0
	}
	switch rom[0x0149] {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func flushSerial(core *dmgcore.Core) {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	w.Write(core.SerialBuffer())
}
