// Command goboycore is a headless harness around the emulator core:
// it loads a ROM, runs it for a fixed number of frames, and optionally
// writes out the battery save at the end. It has no video or audio
// output of its own — internal/host's interfaces are for an embedding
// application to implement, which is out of scope here.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/cartboy/goboycore/internal/cheats"
	"github.com/cartboy/goboycore/internal/gameboy"
	"github.com/cartboy/goboycore/internal/types"
	"github.com/cartboy/goboycore/pkg/log"
	"github.com/cartboy/goboycore/pkg/romload"
)

func main() {
	app := cli.NewApp()
	app.Name = "goboycore"
	app.Usage = "goboycore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "model", Value: "auto", Usage: "auto, dmg or cgb"},
		cli.IntFlag{Name: "frames", Value: 60, Usage: "number of frames to run before exiting"},
		cli.StringFlag{Name: "save", Usage: "path to write the battery-backed SRAM to on exit"},
		cli.StringFlag{Name: "cheat", Usage: "a Game Genie code to enable, ABC-DEF-GHI"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.Args().First()
	if romPath == "" {
		cli.ShowAppHelp(c)
		return fmt.Errorf("goboycore: no ROM path provided")
	}

	rom, err := romload.Load(romPath)
	if err != nil {
		return err
	}

	var opts []gameboy.Option
	opts = append(opts, gameboy.WithLogger(log.New()))
	opts = append(opts, gameboy.WithModel(parseModel(c.String("model"))))

	if code := c.String("cheat"); code != "" {
		engine := cheats.NewEngine()
		if err := engine.Add(code, "cli"); err != nil {
			return fmt.Errorf("goboycore: %w", err)
		}
		engine.SetEnabled("cli", true)
		opts = append(opts, gameboy.WithCheats(engine))
	}

	core, err := gameboy.NewCore(rom, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	frames := c.Int("frames")
	ran := 0
	for ; ran < frames; ran++ {
		core.RunUntilFrame()
		if core.Err() != nil {
			break
		}
	}
	fmt.Printf("ran %d frames in %s\n", ran, time.Since(start))
	if core.Err() != nil {
		fmt.Fprintf(os.Stderr, "goboycore: core frozen: %v\n", core.Err())
	}

	if out := c.String("save"); out != "" {
		if sram := core.SaveSRAM(); sram != nil {
			if err := os.WriteFile(out, sram, 0o644); err != nil {
				return fmt.Errorf("goboycore: writing save: %w", err)
			}
		}
	}
	return nil
}

func parseModel(s string) types.Model {
	switch s {
	case "dmg":
		return types.DMG
	case "cgb":
		return types.CGB
	default:
		return types.Auto
	}
}
