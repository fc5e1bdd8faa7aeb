package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/cityplan/simcore/logging"
)

func TestFromReaderDefaults(t *testing.T) {
	cfg, err := FromReader("", strings.NewReader(``))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Simulation.Workers, test.ShouldEqual, 4)
	test.That(t, cfg.Simulation.GridCellSize, test.ShouldEqual, 100.0)
	test.That(t, cfg.Microtraffic.TrafficLogicThrottling, test.ShouldEqual, 10)
	test.That(t, cfg.Landmarks.Stride, test.ShouldEqual, 16)
}

func TestFromReaderOverrides(t *testing.T) {
	yamlDoc := `
simulation:
  workers: 8
landmarks:
  stride: 4
attributes:
  experiment: true
`
	cfg, err := FromReader("", strings.NewReader(yamlDoc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Simulation.Workers, test.ShouldEqual, 8)
	test.That(t, cfg.Landmarks.Stride, test.ShouldEqual, 4)
	test.That(t, cfg.Attributes.Bool("experiment", false), test.ShouldBeTrue)
}

func TestAttributeMapAccessors(t *testing.T) {
	am := AttributeMap{
		"enabled":   true,
		"radius":    6.5,
		"count":     3,
		"name":      "north",
		"ints":      []interface{}{1, 2, 3},
		"names":     []interface{}{"a", "b"},
	}
	test.That(t, am.Bool("enabled", false), test.ShouldBeTrue)
	test.That(t, am.Float64("radius", 0), test.ShouldAlmostEqual, 6.5)
	test.That(t, am.Int("count", 0), test.ShouldEqual, 3)
	test.That(t, am.String("name", ""), test.ShouldEqual, "north")
	test.That(t, am.IntSlice("ints"), test.ShouldResemble, []int{1, 2, 3})
	test.That(t, am.StringSlice("names"), test.ShouldResemble, []string{"a", "b"})
	test.That(t, am.Bool("missing", true), test.ShouldBeTrue)
}

func TestDiffConfigs(t *testing.T) {
	left, err := FromReader("", strings.NewReader(`attributes: {a: 1, b: 2}`))
	test.That(t, err, test.ShouldBeNil)
	right, err := FromReader("", strings.NewReader(`attributes: {b: 3, c: 4}`))
	test.That(t, err, test.ShouldBeNil)

	diff, err := DiffConfigs(left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.Equal, test.ShouldBeFalse)
	test.That(t, diff.Added["c"], test.ShouldEqual, 4)
	test.That(t, diff.Removed["a"], test.ShouldEqual, 1)
	test.That(t, diff.Modified["b"], test.ShouldEqual, 3)
}

func TestDiffConfigsEqual(t *testing.T) {
	left, err := FromReader("", strings.NewReader(`attributes: {a: 1}`))
	test.That(t, err, test.ShouldBeNil)
	right, err := FromReader("", strings.NewReader(`attributes: {a: 1}`))
	test.That(t, err, test.ShouldBeNil)

	diff, err := DiffConfigs(left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.Equal, test.ShouldBeTrue)
}

func TestWatcherNoop(t *testing.T) {
	logger := logging.NewTestLogger(t)
	w, err := NewWatcher(context.Background(), &Config{}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer w.Close()

	timer := time.NewTimer(50 * time.Millisecond)
	defer timer.Stop()
	select {
	case <-w.Config():
		t.Fatal("unexpected config on no-op watcher")
	case <-timer.C:
	}
}

func TestWatcherFile(t *testing.T) {
	logger := logging.NewTestLogger(t)
	tmp, err := os.CreateTemp("", "simcore-config-*.yaml")
	test.That(t, err, test.ShouldBeNil)
	defer os.Remove(tmp.Name())
	tmp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(ctx, &Config{ConfigFilePath: tmp.Name()}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer w.Close()

	test.That(t, os.WriteFile(tmp.Name(), []byte("landmarks:\n  stride: 9\n"), 0o644), test.ShouldBeNil)

	select {
	case cfg := <-w.Config():
		test.That(t, cfg.Landmarks.Stride, test.ShouldEqual, 9)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
