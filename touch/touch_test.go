package touch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// scripted replays a fixed list of events, then returns io.EOF.
type scripted struct {
	events []Event
}

func (s *scripted) ReadEvent() (Event, error) {
	if len(s.events) == 0 {
		return Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

// touchAt returns the events of one tap at a raw position.
func touchAt(x, y int32) []Event {
	return []Event{
		{Type: EvAbs, Code: AbsX, Value: x},
		{Type: EvAbs, Code: AbsY, Value: y},
		{Type: EvKey, Code: BtnTouch, Value: 1},
		{Type: EvSyn},
		{Type: EvKey, Code: BtnTouch, Value: 0},
		{Type: EvSyn},
	}
}

type recordingPrompter struct {
	shown []Target
}

func (p *recordingPrompter) ShowTarget(i int, t Target) error {
	p.shown = append(p.shown, t)
	return nil
}

func testCalibration() *Calibration {
	return &Calibration{
		ScreenPoints: []Pair{{0, 0}, {480, 0}, {480, 320}, {0, 320}, {240, 160}},
		RawPoints:    []Pair{{100, 100}, {100, 4000}, {4000, 4000}, {4000, 100}, {2050, 2050}},
	}
}

func TestTargets(t *testing.T) {
	want := []Target{
		{"Top Left", image.Pt(30, 30)},
		{"Top Right", image.Pt(449, 30)},
		{"Bottom Right", image.Pt(449, 289)},
		{"Bottom Left", image.Pt(30, 289)},
		{"Center", image.Pt(240, 160)},
	}
	got := Targets(480, 320)
	if len(got) != NumTargets {
		t.Fatalf("len(Targets()) = %d, want %d", len(got), NumTargets)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Targets()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMapperMidpoint(t *testing.T) {
	m, err := NewMapper(testCalibration(), 480, 320, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Map(2050, 2050), image.Pt(240, 160); got != want {
		t.Errorf("Map(2050, 2050) = %v, want %v", got, want)
	}
}

func TestMapper(t *testing.T) {
	m, err := NewMapper(testCalibration(), 480, 320, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		rawX, rawY int
		want       image.Point
	}{
		{"origin", 100, 100, image.Pt(0, 0)},
		{"far corner clamped", 4000, 4000, image.Pt(479, 319)},
		{"below range clamped", 0, 0, image.Pt(0, 0)},
		{"above range clamped", 5000, 5000, image.Pt(479, 319)},
		// Raw Y drives screen X.
		{"axes swapped", 100, 4000, image.Pt(479, 0)},
		{"truncated", 101, 110, image.Pt(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Map(tt.rawX, tt.rawY); got != tt.want {
				t.Errorf("Map(%d, %d) = %v, want %v", tt.rawX, tt.rawY, got, tt.want)
			}
		})
	}
}

func TestMapperDegenerate(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cal := testCalibration()
	cal.RawPoints[2] = cal.RawPoints[0]
	m, err := NewMapper(cal, 480, 320, logger)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "degenerate calibration") {
		t.Errorf("no warning logged, got %q", logs.String())
	}

	// The spans are widened to one raw unit; results are still in range.
	for _, raw := range [][2]int{{0, 0}, {100, 100}, {101, 101}, {4000, 4000}} {
		p := m.Map(raw[0], raw[1])
		if !p.In(image.Rect(0, 0, 480, 320)) {
			t.Errorf("Map(%v) = %v, outside the screen", raw, p)
		}
	}
}

func TestNewMapperTooFewSamples(t *testing.T) {
	cal := &Calibration{ScreenPoints: []Pair{{0, 0}}, RawPoints: []Pair{{1, 1}}}
	if _, err := NewMapper(cal, 480, 320, nil); err == nil {
		t.Error("NewMapper() with one sample succeeded")
	}
}

func TestCalibrator(t *testing.T) {
	var events []Event
	raws := [][2]int32{{3900, 3850}, {3880, 250}, {200, 230}, {210, 3870}, {2040, 2060}}
	for _, r := range raws {
		events = append(events, touchAt(r[0], r[1])...)
	}
	p := &recordingPrompter{}
	c := &Calibrator{Reader: NewReader(&scripted{events: events}), Prompter: p, W: 480, H: 320}

	if c.State() != 0 {
		t.Fatalf("initial State() = %v", c.State())
	}
	cal, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.State() != Done {
		t.Errorf("State() = %v, want %v", c.State(), Done)
	}
	if len(p.shown) != NumTargets {
		t.Fatalf("%d targets shown, want %d", len(p.shown), NumTargets)
	}
	if err := cal.Validate(); err != nil {
		t.Fatal(err)
	}
	targets := Targets(480, 320)
	for i, r := range raws {
		s := cal.Sample(i)
		if s.Screen != targets[i].Point {
			t.Errorf("sample %d screen = %v, want %v", i, s.Screen, targets[i].Point)
		}
		if want := image.Pt(int(r[0]), int(r[1])); s.Raw != want {
			t.Errorf("sample %d raw = %v, want %v", i, s.Raw, want)
		}
	}
}

func TestCalibratorNeedsBothAxes(t *testing.T) {
	// A release after only one axis was reported is ignored.
	events := []Event{
		{Type: EvAbs, Code: AbsX, Value: 500},
		{Type: EvKey, Code: BtnTouch, Value: 1},
		{Type: EvKey, Code: BtnTouch, Value: 0},
	}
	events = append(events, touchAt(600, 700)...)
	c := &Calibrator{Reader: NewReader(&scripted{events: events}), Prompter: &recordingPrompter{}, W: 480, H: 320}

	_, err := c.Run(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Run() error = %v, want io.EOF", err)
	}
	if c.State() != 1 {
		t.Errorf("State() = %v, want AwaitingSample(1)", c.State())
	}
	if got := c.cal.Sample(0).Raw; got != image.Pt(600, 700) {
		t.Errorf("sample 0 raw = %v, want (600,700)", got)
	}
}

func TestCalibratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Calibrator{Reader: NewReader(&scripted{events: touchAt(1, 1)}), Prompter: &recordingPrompter{}, W: 480, H: 320}
	if _, err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestStateString(t *testing.T) {
	if got := State(2).String(); got != "AwaitingSample(2)" {
		t.Errorf("State(2) = %q", got)
	}
	if got := Done.String(); got != "Done" {
		t.Errorf("Done = %q", got)
	}
}

func TestCalibrationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touch_calibration.json")
	cal := testCalibration()
	if err := cal.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"screen_points": [`)) || !bytes.Contains(data, []byte(`"raw_points": [`)) {
		t.Errorf("unexpected file layout:\n%s", data)
	}

	loaded, err := LoadCalibration(path)
	if err != nil {
		t.Fatal(err)
	}
	m1, _ := NewMapper(cal, 480, 320, nil)
	m2, err := NewMapper(loaded, 480, 320, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, raw := range [][2]int{{100, 100}, {2050, 2050}, {333, 3777}, {4000, 120}} {
		if a, b := m1.Map(raw[0], raw[1]), m2.Map(raw[0], raw[1]); a != b {
			t.Errorf("Map(%v): saved %v, loaded %v", raw, a, b)
		}
	}
}

func TestLoadCalibrationErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.json")},
		{"malformed", write("bad.json", "{not json")},
		{"short", write("short.json", `{"screen_points": [[30,30]], "raw_points": [[1,2]]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCalibration(tt.path)
			if !errors.Is(err, ErrNoCalibration) {
				t.Errorf("LoadCalibration() error = %v, want ErrNoCalibration", err)
			}
		})
	}
}

func TestReaderFoldsRepeats(t *testing.T) {
	r := NewReader(&scripted{events: []Event{
		{Type: EvKey, Code: BtnTouch, Value: 1},
		{Type: EvKey, Code: BtnTouch, Value: 1},
		{Type: EvAbs, Code: AbsY, Value: 9},
		{Type: EvKey, Code: 0x110, Value: 0}, // BTN_LEFT
		{Type: EvKey, Code: BtnTouch, Value: 0},
	}})
	ctx := context.Background()

	c, err := r.Next(ctx)
	if err != nil || !c.Down || c.Valid {
		t.Fatalf("first Next() = %+v, %v; want press without position", c, err)
	}
	c, err = r.Next(ctx)
	if err != nil || c.Down || c.Raw.Y != 9 {
		t.Fatalf("second Next() = %+v, %v; want release at y=9", c, err)
	}
	if _, err := r.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("third Next() error = %v, want io.EOF", err)
	}
}

func TestDoubleTap(t *testing.T) {
	inClock := func(p image.Point) bool { return p.X >= 480-52 }
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		taps []image.Point
		gaps []time.Duration
		want []bool
	}{
		{"double", []image.Point{{450, 20}, {455, 25}}, []time.Duration{0, 300 * time.Millisecond}, []bool{false, true}},
		{"just in time", []image.Point{{450, 20}, {450, 20}}, []time.Duration{0, 399 * time.Millisecond}, []bool{false, true}},
		{"at limit", []image.Point{{450, 20}, {450, 20}}, []time.Duration{0, 400 * time.Millisecond}, []bool{false, false}},
		{"too slow", []image.Point{{450, 20}, {450, 20}}, []time.Duration{0, 401 * time.Millisecond}, []bool{false, false}},
		{"outside", []image.Point{{100, 20}, {100, 20}}, []time.Duration{0, 100 * time.Millisecond}, []bool{false, false}},
		{"outside between", []image.Point{{450, 20}, {100, 20}, {450, 20}}, []time.Duration{0, 50 * time.Millisecond, 50 * time.Millisecond}, []bool{false, false, true}},
		{"triple", []image.Point{{450, 20}, {450, 20}, {450, 20}}, []time.Duration{0, 100 * time.Millisecond, 100 * time.Millisecond}, []bool{false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DoubleTap{In: inClock}
			now := t0
			for i, p := range tt.taps {
				now = now.Add(tt.gaps[i])
				if got := d.Tap(p, now); got != tt.want[i] {
					t.Errorf("tap %d at %v = %v, want %v", i, p, got, tt.want[i])
				}
			}
		})
	}
}
