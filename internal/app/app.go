package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atomicstack/mqtt-analyzer/internal/broker"
	"github.com/atomicstack/mqtt-analyzer/internal/engine"
	"github.com/atomicstack/mqtt-analyzer/internal/format"
	"github.com/atomicstack/mqtt-analyzer/internal/notify"
	"github.com/atomicstack/mqtt-analyzer/internal/streamer"
	"github.com/atomicstack/mqtt-analyzer/internal/ui"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Config describes user-provided application options.
type Config struct {
	Broker        broker.Options
	Topics        []string
	Format        format.Kind
	TUI           bool
	Mode          uistate.Tab
	PruneRetained bool
	BufferSize    int
	Width         int
	Height        int
	ShowFooter    bool
}

type dialFunc func(ctx context.Context, opts broker.Options, sink broker.Sink) (broker.Client, error)

// runner holds the collaborators run swaps out in tests.
type runner struct {
	dial        dialFunc
	out         io.Writer
	programOpts []tea.ProgramOption
}

// Run connects to the broker and either drives the dashboard or prints the
// stream to stdout until interrupted.
func Run(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	r := runner{
		dial:        broker.Dial,
		out:         os.Stdout,
		programOpts: []tea.ProgramOption{tea.WithAltScreen()},
	}
	return r.run(ctx, cfg)
}

func (r runner) run(parent context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	stream := notify.NewStream()
	defer stream.Close()

	g, gctx := errgroup.WithContext(ctx)
	eng := engine.New(stream)

	// The reader must exist before dialing or the first Connected is dropped.
	notes, err := eng.Notifications(gctx)
	if err != nil {
		return errors.Wrap(err, "subscribe notification stream")
	}

	client, err := r.dial(gctx, cfg.Broker, stream)
	if err != nil {
		return errors.Wrapf(err, "connect to %s", cfg.Broker.Addr())
	}
	defer client.Close()

	g.Go(func() error {
		return eng.Run(gctx, client)
	})
	eng.SubscribeAll(cfg.Topics)

	if !cfg.TUI {
		g.Go(func() error {
			return streamer.Run(gctx, notes, r.out, cfg.Format)
		})
		return g.Wait()
	}

	model := ui.NewModel(eng.Registry(), eng, ui.Options{
		InitialTab:    cfg.Mode,
		Format:        cfg.Format,
		BufferSize:    cfg.BufferSize,
		PruneRetained: cfg.PruneRetained,
		Broker:        cfg.Broker.Addr(),
		BrokerKind:    cfg.Broker.Kind,
		Width:         cfg.Width,
		Height:        cfg.Height,
		ShowFooter:    cfg.ShowFooter,
	})
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.programOpts...)
	program := tea.NewProgram(model, opts...)

	g.Go(func() error {
		return ui.Relay(gctx, notes, program.Send)
	})
	g.Go(func() error {
		<-eng.Done()
		if err := eng.Err(); err != nil && !errors.Is(err, engine.ErrStopped) {
			program.Send(ui.FaultMsg{Err: err})
		}
		return nil
	})

	_, runErr := program.Run()
	cancel()
	waitErr := g.Wait()
	if waitErr != nil {
		return waitErr
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}
