package main

import (
	"fmt"
	"log"

	"github.com/integrii/flaggy"

	"github.com/welle/oscope"
)

// AppName is the app name
const AppName = "oscope"

// AppDesc is the app description
const AppDesc = "live waveform/spectrum scope over an in-process signal server"

var version = "unknown"

func main() {
	log.SetFlags(0)

	cfg := oscope.NewZeroConfig()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.Sanitize(), "invalid config")

	chk(oscope.Run(&cfg), "failed to run oscope")
}

func doFlags(cfg *oscope.Config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.Version = version

	listSignalsCmd := flaggy.Subcommand{
		Name:        "list-signals",
		ShortName:   "ls",
		Description: "list the demo signals served by the in-process server",
	}

	parser.AttachSubcommand(&listSignalsCmd, 1)

	parser.String(&cfg.Signal, "s", "signal", "signal name from list-signals")
	parser.Bool(&cfg.Spectrum, "q", "spectrum", "scope frequency magnitudes instead of the waveform")
	parser.Int(&cfg.Width, "w", "width", "scope width in cells (0 fits the terminal)")
	parser.Int(&cfg.Height, "ht", "height", "scope height in cells (0 fits the terminal)")
	parser.Int(&cfg.FrameRate, "f", "fps", "acquisition ticks per second")
	parser.Float64(&cfg.ZoomSlider, "z", "zoom", "zoom slider position [0, 99]")
	parser.Float64(&cfg.SampleRate, "r", "rate", "server sample rate")
	parser.Int(&cfg.CaptureSize, "n", "capture", "capture buffer size (power of two)")
	parser.Bool(&cfg.PinnedOnTop, "p", "pinned", "keep the scope view above other windows")

	chk(parser.Parse(), "failed to parse arguments")

	if listSignalsCmd.Used {
		for _, name := range oscope.Signals() {
			fmt.Printf("- %s\n", name)
		}
		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
