package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/jivemeter/internal/audio"
	"github.com/linuxmatters/jivemeter/internal/cli"
	"github.com/linuxmatters/jivemeter/internal/config"
	"github.com/linuxmatters/jivemeter/internal/meter"
	"github.com/linuxmatters/jivemeter/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input      string  `arg:"" name:"input" help:"Input audio file (WAV, MP3 or FLAC)" optional:""`
	Layout     string  `help:"Band layout YAML file" type:"existingfile" placeholder:"FILE"`
	Bands      int     `help:"Number of log-spaced bands when no layout is given" default:"16"`
	SampleSize int     `help:"Samples per analysis frame (overrides layout)" default:"0" placeholder:"N"`
	NoiseFloor float64 `help:"Per-bin noise floor (overrides layout, negative keeps it)" default:"-1" placeholder:"X"`
	Transform  string  `help:"Spectral transform: gofft or gonum (overrides layout)" placeholder:"NAME"`
	Isolate    bool    `help:"Normalise every band against its own ceiling"`
	Scope      bool    `help:"Show the triggered waveform under the meters"`
	Fast       bool    `help:"Analyse as fast as possible instead of at playback speed"`
	NoTUI      bool    `name:"no-tui" help:"Print a summary table instead of live meters"`
	Version    bool    `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("jivemeter"),
		kong.Description(cli.AppDescription),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		os.Exit(1)
	}
	if _, err := os.Stat(CLI.Input); os.IsNotExist(err) {
		cli.PrintError(fmt.Sprintf("input file does not exist: %s", CLI.Input))
		os.Exit(1)
	}

	layout, err := loadLayout()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, CLI.Input, layout); err != nil {
		if errors.Is(err, context.Canceled) {
			cli.PrintWarning("interrupted")
			os.Exit(130)
		}
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// loadLayout reads the layout file, or builds the default one, then applies
// command line overrides
func loadLayout() (*config.Layout, error) {
	var layout *config.Layout
	if CLI.Layout != "" {
		l, err := config.LoadLayout(CLI.Layout)
		if err != nil {
			return nil, err
		}
		layout = l
	} else {
		if CLI.Bands < 1 || CLI.Bands > config.BandSize {
			return nil, fmt.Errorf("invalid bands value: %d (must be 1-%d)", CLI.Bands, config.BandSize)
		}
		layout = config.DefaultLayout(CLI.Bands)
	}

	if CLI.SampleSize > 0 {
		layout.SampleSize = CLI.SampleSize
	}
	if CLI.NoiseFloor >= 0 {
		layout.NoiseFloor = CLI.NoiseFloor
	}
	if CLI.Transform != "" {
		layout.Transform = CLI.Transform
	}
	if CLI.Isolate {
		for i := range layout.Bands {
			layout.Bands[i].Isolated = true
		}
	}

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return layout, nil
}

func run(ctx context.Context, input string, layout *config.Layout) error {
	dec, err := audio.NewDecoder(input)
	if err != nil {
		return fmt.Errorf("opening audio: %w", err)
	}
	defer dec.Close()

	session, err := meter.NewSession(dec, layout)
	if err != nil {
		return fmt.Errorf("building analysis: %w", err)
	}

	if CLI.NoTUI {
		return runPlain(ctx, input, session, dec, layout)
	}
	return runTUI(ctx, input, session, layout)
}

func runPlain(ctx context.Context, input string, session *meter.Session, dec audio.AudioDecoder, layout *config.Layout) error {
	cli.PrintBanner()
	cli.PrintInfo("Input", input)
	cli.PrintInfo("Format", fmt.Sprintf("%d Hz, %d channel(s)", dec.SampleRate(), dec.NumChannels()))
	cli.PrintInfo("Bands", fmt.Sprintf("%d", len(layout.Bands)))
	cli.PrintInfo("Frame", fmt.Sprintf("%d samples (%s)", layout.GetSampleSize(), cli.FormatDuration(session.FrameDuration())))

	summary, err := session.Run(ctx, nil)
	if err != nil {
		return err
	}
	if summary.Frames == 0 {
		cli.PrintWarning("no audio data in file")
	}
	cli.PrintSummary(summary)
	return nil
}

func runTUI(ctx context.Context, input string, session *meter.Session, layout *config.Layout) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	barR, barG, barB, err := layout.Colors.BarColor()
	if err != nil {
		return err
	}
	peakR, peakG, peakB, err := layout.Colors.PeakColor()
	if err != nil {
		return err
	}

	model := ui.NewModel(ui.Options{
		Title:     filepath.Base(input),
		BarColor:  config.FormatHexColor(barR, barG, barB),
		PeakColor: config.FormatHexColor(peakR, peakG, peakB),
		QuitDelay: 3 * time.Second,
		ShowScope: CLI.Scope,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	session.Realtime = !CLI.Fast
	if CLI.Fast {
		// Rendering every frame would dominate when unpaced
		session.Every = 8
	}

	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, err := session.Run(ctx, func(snap meter.Snapshot) {
			p.Send(ui.SnapshotMsg(snap.Clone()))
		})
		runErr = err
		p.Send(ui.CompleteMsg{Summary: summary, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("running UI: %w", err)
	}

	// Quitting early stops the analysis
	cancel()
	<-done

	if model.Interrupted() {
		return context.Canceled
	}
	fmt.Print(model.CompletionSummary())
	return runErr
}
