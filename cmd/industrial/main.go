package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	industrial "github.com/cbegin/industrial-go"
	"github.com/cbegin/industrial-go/internal/control"
	"github.com/cbegin/industrial-go/internal/keyboard"
	"github.com/cbegin/industrial-go/internal/meter"
	"github.com/cbegin/industrial-go/internal/midi"
)

var errFinished = errors.New("finished")

var (
	sampleRate int
	backend    string
	synthType  int
	meterEvery time.Duration
	commands   []string
	seconds    float64
	loop       bool
	keysOn     bool
	midiPort   string
)

func main() {
	log.SetFlags(log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "industrial",
	Short: "Polyphonic industrial synthesizer",
	Long: `industrial renders an eight-voice synthesizer with chaotic
modulation, folding, crushing and comb resonance to the sound card.

Examples:
  industrial play song.mid --loop
  industrial play --cmd "set-synth-type 3" --cmd "cutoff 900"
  industrial live --keys
  industrial live --midi any --cmd "chaos-enabled on"`,
	SilenceUsage: true,
}

var playCmd = &cobra.Command{
	Use:   "play [file.mid]",
	Short: "Play a standard MIDI file, or a demo phrase without one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Play from the computer keyboard or a MIDI input",
	RunE:  runLive,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the control commands accepted by --cmd",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range control.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input ports",
	Run: func(cmd *cobra.Command, _ []string) {
		ports := midi.Ports()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI input ports")
			return
		}
		for i, name := range ports {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, name)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&sampleRate, "sample-rate", 48000, "Output sample rate")
	pf.StringVar(&backend, "backend", industrial.BackendEbiten, "Audio backend (ebiten, oto)")
	pf.IntVar(&synthType, "synth", 0, "Synth type 0..6")
	pf.DurationVar(&meterEvery, "meter", 250*time.Millisecond, "Level meter interval (0 disables)")
	pf.StringArrayVar(&commands, "cmd", nil, "Command applied at start, e.g. --cmd \"cutoff 800\" (repeatable)")
	pf.Float64Var(&seconds, "seconds", 0, "Stop after this many seconds (0 runs until done)")

	playCmd.Flags().BoolVar(&loop, "loop", false, "Loop the sequence")
	liveCmd.Flags().BoolVarP(&keysOn, "keys", "k", false, "Play from the computer keyboard")
	liveCmd.Flags().StringVar(&midiPort, "midi", "", "MIDI input port name (\"any\" for the first port)")

	rootCmd.AddCommand(playCmd, liveCmd, commandsCmd, portsCmd)
}

func runPlay(_ *cobra.Command, args []string) error {
	var events []industrial.Event
	if len(args) == 1 {
		var err error
		if events, err = midi.LoadSMF(args[0], sampleRate); err != nil {
			return err
		}
	} else {
		events = demoPhrase(sampleRate)
	}
	return run(func(ctx context.Context, g *errgroup.Group, pl *industrial.Player) error {
		pl.PlaySequence(events, loop)
		return nil
	}, true)
}

func runLive(_ *cobra.Command, _ []string) error {
	if !keysOn && midiPort == "" {
		return errors.New("live needs --keys, --midi or both")
	}
	return run(func(ctx context.Context, g *errgroup.Group, pl *industrial.Player) error {
		send := func(source string) func(industrial.Command) {
			return func(cmd industrial.Command) {
				if err := pl.Send(cmd); err != nil {
					log.Printf("%s: %v", source, err)
				}
			}
		}
		if midiPort != "" {
			name := midiPort
			if name == "any" {
				name = ""
			}
			stopListen, err := midi.Listen(name, send("midi"))
			if err != nil {
				return err
			}
			g.Go(func() error {
				<-ctx.Done()
				stopListen()
				midi.Close()
				return nil
			})
		}
		if keysOn {
			kb := keyboard.New(send("keyboard"))
			g.Go(func() error {
				err := kb.Run(ctx, os.Stdin)
				if errors.Is(err, keyboard.ErrQuit) {
					return errFinished
				}
				return err
			})
		}
		return nil
	}, false)
}

// run starts a player, lets setup attach inputs and waits until playback
// ends (when endOnPlayback), the time limit passes or a signal arrives.
func run(setup func(context.Context, *errgroup.Group, *industrial.Player) error, endOnPlayback bool) error {
	params := industrial.DefaultParams()
	params.SynthType = synthType
	lm := meter.New()
	pl, err := industrial.NewPlayer(sampleRate,
		industrial.WithBackend(backend),
		industrial.WithParams(params),
		industrial.WithSampleTap(lm.Observe),
	)
	if err != nil {
		return err
	}
	for _, line := range commands {
		if err := pl.Exec(line); err != nil {
			return fmt.Errorf("--cmd %q: %w", line, err)
		}
	}
	watch := pl.Watch()
	if err := pl.Start(); err != nil {
		return err
	}
	defer func() {
		if err := pl.Stop(); err != nil {
			log.Printf("stop: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	if err := setup(ctx, g, pl); err != nil {
		return err
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-watch:
				switch ev.Kind {
				case industrial.EventWarning:
					log.Printf("warning: %s: %s", ev.Key, ev.Message)
				case industrial.EventLoopCompleted:
					log.Printf("loop completed")
				case industrial.EventPlaybackEnded:
					if endOnPlayback {
						return errFinished
					}
				}
			}
		}
	})

	if seconds > 0 {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Duration(seconds * float64(time.Second))):
				return errFinished
			}
		})
	}

	if meterEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(meterEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					fmt.Fprint(os.Stderr, "\r\n")
					return nil
				case <-ticker.C:
					peak, rms := lm.Read()
					fmt.Fprintf(os.Stderr, "\rpeak %7.1f dB  rms %7.1f dB  voices %d ",
						meter.DB(peak), meter.DB(rms), pl.ActiveVoices())
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errFinished) {
		return err
	}
	return nil
}

func demoPhrase(sampleRate int) []industrial.Event {
	var events []industrial.Event
	step := int64(sampleRate / 4)
	for i, key := range []uint8{45, 52, 57, 60, 64, 69, 64, 60} {
		events = append(events, industrial.Note(int64(i)*step, step*3/4, int(key), midi.KeyToFreq(key), 2)...)
	}
	return events
}
