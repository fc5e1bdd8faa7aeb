// Command simcoreutil is a headless operator tool for this simulation
// core: it builds a small scenario with the plan manager, compiles and
// constructs it, and drives the microtraffic tick loop, printing
// go-pretty tables instead of requiring a UI (rendering is this repo's
// Non-goal, per spec).
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/cityplan/simcore/config"
	"github.com/cityplan/simcore/construction"
	"github.com/cityplan/simcore/diff"
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/microtraffic"
	"github.com/cityplan/simcore/plan"
	"github.com/cityplan/simcore/prototype"
	"github.com/cityplan/simcore/trip"
)

func main() {
	app := &cli.App{
		Name:  "simcoreutil",
		Usage: "build, diff, and simulate a plan headlessly",
		Commands: []*cli.Command{
			configCommand(),
			demoCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "path to a config.yaml"},
		},
		Action: func(c *cli.Context) error {
			var cfg *config.Config
			if path := c.String("file"); path != "" {
				loaded, err := config.Read(path)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg = config.Default()
			}
			t := table.NewWriter()
			t.AppendHeader(table.Row{"Setting", "Value"})
			t.AppendRow(table.Row{"simulation.tick_interval", cfg.Simulation.TickInterval})
			t.AppendRow(table.Row{"simulation.workers", cfg.Simulation.Workers})
			t.AppendRow(table.Row{"simulation.grid_cell_size", cfg.Simulation.GridCellSize})
			t.AppendRow(table.Row{"microtraffic.slowdown_radius", cfg.Microtraffic.SlowdownRadius})
			t.AppendRow(table.Row{"microtraffic.traffic_logic_throttling", cfg.Microtraffic.TrafficLogicThrottling})
			t.AppendRow(table.Row{"microtraffic.pathfinding_throttling", cfg.Microtraffic.PathfindingThrottling})
			t.AppendRow(table.Row{"landmarks.stride", cfg.Landmarks.Stride})
			fmt.Println(t.Render())
			return nil
		},
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "compile a two-segment straight road, spawn one trip, and run the tick loop",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ticks", Value: 500, Usage: "number of ticks to simulate"},
		},
		Action: func(c *cli.Context) error {
			return runDemo(c.Int("ticks"))
		},
	}
}

func runDemo(ticks int) error {
	logger := logging.NewLogger("simcoreutil")

	mgr := plan.NewManager()
	project := mgr.StartNewProject()
	gestureID := plan.NewGestureID()
	mgr.StartNewGesture(project, gestureID, plan.RoadGesture(1, 0))
	mgr.AddControlPoint(project, gestureID, geom.Pt(0, 0), true, false)
	mgr.AddControlPoint(project, gestureID, geom.Pt(100, 0), true, false)
	mgr.AddControlPoint(project, gestureID, geom.Pt(200, 0), true, true)
	mgr.Implement(project)

	after := prototype.Compile(logger, mgr.Master)
	before := prototype.Empty()

	graph := lanegraph.NewGraph(8)
	driver := construction.NewDriver(graph, logger)
	groups := diff.ActionsTo(before, after)
	if err := driver.Apply(groups, before, after); err != nil {
		logger.Warnw("construction driver reported partial failures", "error", err)
	}

	printPrototypeTable(after)
	printActionTable(groups)

	source, destination, ok := pickEndpoints(graph)
	if !ok {
		return fmt.Errorf("compiled plan produced no lanes to spawn a trip on")
	}

	sink := &loggingObserver{logger: logger}
	boundary := trip.NewBoundary(sink)
	sim := microtraffic.NewSimulation(graph, logger, boundary)
	boundary.Attach(sim)

	if !boundary.SpawnTrip("demo-trip", source, destination, 15) {
		return fmt.Errorf("failed to spawn demo trip at %+v", source)
	}

	for i := 0; i < ticks; i++ {
		sim.Step(1.0)
	}

	printLaneTable(graph)
	return nil
}

// pickEndpoints picks the lane with the smallest id as the trip's source
// and the lane with the largest id (at its far end) as its destination --
// good enough for a demo over a single straight road.
func pickEndpoints(graph *lanegraph.Graph) (source, destination lanegraph.PreciseLocation, ok bool) {
	var first, last lanegraph.LaneID
	found := false
	for id := range graph.Lanes() {
		if !found || id < first {
			first = id
		}
		if !found || id > last {
			last = id
		}
		found = true
	}
	if !found {
		return lanegraph.PreciseLocation{}, lanegraph.PreciseLocation{}, false
	}
	lastLane, _ := graph.Lane(last)
	return lanegraph.PreciseLocation{Lane: first, Offset: 0},
		lanegraph.PreciseLocation{Lane: last, Offset: lastLane.Length},
		true
}

type loggingObserver struct {
	logger logging.Logger
}

func (o *loggingObserver) FinishTrip(id lanegraph.CarID, location lanegraph.PreciseLocation, result microtraffic.TripResult) {
	o.logger.Infow("trip finished", "trip", id, "lane", location.Lane, "offset", location.Offset, "tick", result.Tick, "fate", fateString(result.Fate))
}

func fateString(f microtraffic.TripFate) string {
	switch f {
	case microtraffic.FateSuccess:
		return "success"
	case microtraffic.FateNoRoute:
		return "no_route"
	case microtraffic.FateForceStopped:
		return "force_stopped"
	default:
		return "unknown"
	}
}

func printPrototypeTable(result prototype.PlanResult) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Kind"})
	for id, p := range result.Prototypes {
		t.AppendRow(table.Row{id, kindOf(p)})
	}
	fmt.Println(t.Render())
}

func kindOf(p prototype.Prototype) string {
	switch {
	case p.Kind.Lane != nil:
		return "lane"
	case p.Kind.SwitchLane != nil:
		return "switch_lane"
	case p.Kind.Intersection != nil:
		return "intersection"
	case p.Kind.Lot != nil:
		return "lot"
	default:
		return "unknown"
	}
}

func printActionTable(groups diff.ActionGroups) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Kind", "Old ID", "New ID"})
	for _, a := range groups.Destructs {
		t.AppendRow(table.Row{"destruct", a.ID, ""})
	}
	for _, a := range groups.Morphs {
		t.AppendRow(table.Row{"morph", a.OldID, a.NewID})
	}
	for _, a := range groups.Constructs {
		t.AppendRow(table.Row{"construct", "", a.ID})
	}
	fmt.Println(t.Render())
}

func printLaneTable(graph *lanegraph.Graph) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Lane", "Length", "Cars", "Green"})
	for id, lane := range graph.Lanes() {
		t.AppendRow(table.Row{id, fmt.Sprintf("%.1f", lane.Length), len(lane.Cars), lane.Green})
	}
	fmt.Println(t.Render())
}
