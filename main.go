package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/retroamp/internal/audio"
	"github.com/olivier-w/retroamp/internal/logger"
	"github.com/olivier-w/retroamp/internal/media"
	"github.com/olivier-w/retroamp/internal/playback"
	"github.com/olivier-w/retroamp/internal/player"
	"github.com/olivier-w/retroamp/internal/spectrum"
	"github.com/olivier-w/retroamp/internal/ui"
	"github.com/spf13/cobra"
)

type Params struct {
	Path       string  `pos:"true" optional:"true" help:"Folder, audio file, or playlist to open." default:"."`
	Volume     float64 `optional:"true" help:"Initial volume from 0 to 1." default:"0.8"`
	SeekStep   float64 `name:"seek-step" optional:"true" help:"Seconds to seek per key press." default:"5"`
	NoSpectrum bool    `name:"no-spectrum" optional:"true" help:"Animate random bands instead of analysing tracks."`
	Watch      bool    `short:"w" optional:"true" help:"Rescan the shown folder when files change." default:"true"`
	LogFile    string  `name:"log-file" optional:"true" help:"Write logs to this file (default $TMPDIR/retroamp.log)."`
	LogLevel   string  `name:"log-level" optional:"true" help:"DEBUG, INFO, WARN or ERROR." default:"INFO"`
	LogFormat  string  `name:"log-format" optional:"true" help:"text or json." default:"text"`
}

func main() {
	boa.CmdT[Params]{
		Use:     "retroamp [path]",
		Short:   "Terminal music player with a spectrum equalizer",
		Long:    "retroamp browses a folder of audio files (" + media.SupportedExtsList() + ") and plays them with a live frequency-band equalizer.",
		Version: appVersion(),
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(run(params))
		},
	}.Run()
}

func run(params *Params) int {
	if err := checkPath(params.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(params.LogLevel, cfg.Level)
	cfg.Format = params.LogFormat
	cfg.Path = params.LogFile
	if cfg.Path == "" {
		cfg.Path = filepath.Join(os.TempDir(), "retroamp.log")
	}
	log, closeLog := logger.Open(cfg)
	defer closeLog()

	out := player.New(log)
	defer func() {
		if err := out.Close(); err != nil {
			log.Warn("closing audio output", "error", err)
		}
	}()

	machine := playback.New(out, log)
	machine.SetVolume(params.Volume)
	engine := spectrum.NewEngine(audio.FileDecoder{}, log)

	model := ui.New(machine, engine, ui.Options{
		Path:       params.Path,
		SeekStep:   params.SeekStep,
		NoSpectrum: params.NoSpectrum,
		Watch:      params.Watch,
		Logger:     log,
	})
	log.Info("starting", "path", params.Path, "version", appVersion())

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// checkPath rejects paths the player cannot open before the UI starts.
func checkPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) && !media.IsPlaylistExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}
	return nil
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
