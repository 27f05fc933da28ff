package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"feedview/internal/config"
	"feedview/internal/events"
	"feedview/internal/feed"
	"feedview/internal/logger"
	"feedview/internal/tui/render"
	"feedview/internal/virtual"

	"github.com/spf13/cobra"
)

type simulateOptions struct {
	width  int
	height int
	steps  int
	stride float64
}

func newSimulateCmd(flags *rootFlags) *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the list engine headlessly and print every frame",
		Long: `simulate mounts the engine on a fixed-size surface, measures rows with the
same card renderer the terminal UI uses, and scrolls in fixed steps. Page
loads run synchronously. Each line shows the window, the scroll track size
and the pagination state after the frame settles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(flags)
			if err != nil {
				return err
			}
			source, err := buildSource(cfg)
			if err != nil {
				return err
			}
			return simulate(cmd.OutOrStdout(), cfg, source, flags.query, opts)
		},
	}
	cmd.Flags().IntVar(&opts.width, "width", 80, "Surface width in columns")
	cmd.Flags().IntVar(&opts.height, "height", 24, "Surface height in rows")
	cmd.Flags().IntVar(&opts.steps, "steps", 20, "Number of scroll steps")
	cmd.Flags().Float64Var(&opts.stride, "stride", 10, "Rows scrolled per step")
	return cmd
}

// fixedSurface 是尺寸不变的承载面。
type fixedSurface struct {
	width, height float64
}

func (s fixedSurface) Size() (float64, float64) { return s.width, s.height }

func (s fixedSurface) OnResize(func(width, height float64)) func() { return func() {} }

// simulation 持有一次无终端运行的状态。
type simulation struct {
	engine *virtual.Engine
	bus    *events.EventQueue
	width  int
	now    time.Time
}

func simulate(w io.Writer, cfg config.Config, source feed.Source, query string, opts simulateOptions) error {
	bus := events.NewEventQueue(1024)
	bus.SetLogger(logger.Discard("feed-events"))
	tally := events.Watch(bus.Subscribe())

	sim := &simulation{bus: bus, width: opts.width, now: time.Now()}
	engineCfg := cfg.Engine()
	sim.engine = virtual.New(virtual.Options{
		Config: engineCfg,
		Loader: feed.NewCursor(source, query, engineCfg.PageSize),
		OnWindowChange: func(win virtual.Window) {
			sim.publish(events.TypeWindowChanged, events.WindowChanged{Start: win.Start, End: win.End})
		},
		Log: logger.Named("simulate"),
	})
	sim.engine.Mount(fixedSurface{width: float64(opts.width), height: float64(opts.height)})

	fmt.Fprintf(w, "%-5s %-9s %-12s %-9s %-6s %s\n", "step", "scroll", "window", "total", "items", "state")
	for step := 0; step <= opts.steps; step++ {
		if err := sim.settle(); err != nil {
			fmt.Fprintf(w, "%-5d error: %v\n", step, err)
		}
		vp := sim.engine.Viewport()
		fmt.Fprintf(w, "%-5d %-9.0f %-12s %-9.0f %-6d %s\n",
			step, vp.ScrollOffset, sim.engine.Window(), sim.engine.TotalSize(), sim.engine.Len(), paginationLabel(sim.engine.Pagination()))
		sim.engine.ScrollBy(opts.stride)
	}
	sim.engine.Close()
	bus.Close()
	tally.Wait()

	fmt.Fprintf(w, "pages loaded=%d failed=%d window changes=%d\n",
		tally.Count(events.TypePageLoaded), tally.Count(events.TypePageFailed), tally.Count(events.TypeWindowChanged))
	return nil
}

// settle 反复执行帧，直到测量与加载都不再使布局变脏。
func (s *simulation) settle() error {
	const maxFrames = 16
	for range maxFrames {
		if !s.engine.Dirty() {
			return nil
		}
		fr := s.engine.Frame()
		s.measure()
		if fr.Fetch == nil {
			continue
		}
		s.publish(events.TypePageRequested, events.PageRequested{Loaded: s.engine.Len()})
		start := time.Now()
		page, loadErr := fr.Fetch.Run()
		if err := s.engine.Resolve(fr.Fetch, page, loadErr); err != nil {
			s.publish(events.TypePageFailed, events.PageFailed{Err: err.Error(), Elapsed: time.Since(start)})
			return err
		}
		s.publish(events.TypePageLoaded, events.PageLoaded{
			Added:   len(page.Items),
			Total:   s.engine.Len(),
			HasMore: s.engine.Pagination().HasMore,
			Elapsed: time.Since(start),
		})
	}
	return nil
}

// measure 用终端卡片的渲染高度回报窗口内每一行。
func (s *simulation) measure() {
	for _, row := range s.engine.Rows() {
		block, ok := row.Item.(feed.Block)
		if !ok {
			continue
		}
		card := render.Card{Block: block, Now: s.now}
		s.engine.Report(row.Index, float64(card.DesiredHeight(s.width)))
	}
}

func (s *simulation) publish(typ events.Type, payload any) {
	_ = s.bus.Publish(context.Background(), events.New(typ, s.engine.Epoch(), payload))
}

func paginationLabel(state virtual.PaginationState) string {
	switch {
	case state.Loading:
		return "loading"
	case !state.HasMore:
		return "end"
	default:
		return "idle"
	}
}
