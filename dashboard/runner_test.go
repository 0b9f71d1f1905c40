package dashboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/fbpanel"
	"github.com/flavioheleno/fbpanel/config"
	"github.com/flavioheleno/fbpanel/pricefeed"
	"github.com/flavioheleno/fbpanel/touch"
	"tinygo.org/x/drivers"
)

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCoins() *config.Coins {
	hidden := false
	return &config.Coins{Coins: []config.Coin{
		{ID: "btc", Symbol: "BTC", Name: "Bitcoin", Color: "#F7931A", CoinGeckoID: "bitcoin"},
		{ID: "eth", Symbol: "ETH", Name: "Ethereum", Color: "#627EEA"},
		{ID: "doge", Symbol: "DOGE", Name: "Dogecoin", Color: "#C2A633", Show: &hidden},
		{ID: "sol", Symbol: "SOL", Name: "Solana", Color: "#14F195"},
		{ID: "ada", Symbol: "ADA", Name: "Cardano", Color: "#0033AD"},
		{ID: "xrp", Symbol: "XRP", Name: "XRP", Color: "#23292F"},
	}}
}

// countingPanel records the kind of every write it forwards.
type countingPanel struct {
	Panel
	full, regions, draws, clears int
}

func (p *countingPanel) Clear() error {
	p.clears++
	return p.Panel.Clear()
}

func (p *countingPanel) Blit(r image.Rectangle, src image.Image) error {
	if r == p.Bounds() {
		p.full++
	} else {
		p.regions++
	}
	return p.Panel.Blit(r, src)
}

func (p *countingPanel) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	p.draws++
	return p.Panel.Draw(dst, src, sp)
}

type testRunner struct {
	*Runner
	panel *countingPanel
	src   *gradientSource
	now   time.Time
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()
	dev, _ := newTestPanel(t, drivers.Rotation180)
	return newTestRunnerOn(t, dev)
}

func newTestRunnerOn(t *testing.T, dev Panel) *testRunner {
	t.Helper()
	panel := &countingPanel{Panel: dev}
	fonts := loadFonts(t)
	src := &gradientSource{w: 480, h: 320}
	coins := testCoins()
	prices := pricefeed.NewCache()
	prices.Set("bitcoin", 67890.12)
	prices.Set("eth", 3456.7)

	tr := &testRunner{panel: panel, src: src, now: testNow}
	tr.Runner = &Runner{
		Compositor:  NewCompositor(panel, fonts, src),
		Setup:       &SetupView{Coins: coins, Path: filepath.Join(t.TempDir(), "coins.json"), Fonts: fonts, W: 480, H: 320},
		Panel:       panel,
		Coins:       coins,
		Prices:      prices,
		State:       &State{},
		RotateEvery: 20 * time.Second,
		Now:         func() time.Time { return tr.now },
		Logger:      quietLogger(),
	}
	tr.defaults()
	tr.btc, _ = coins.Find("btc")
	tr.reloadRotation()
	return tr
}

func (tr *testRunner) step(t *testing.T) {
	t.Helper()
	if err := tr.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
}

func TestRunnerRotation(t *testing.T) {
	tr := newTestRunner(t)

	tr.step(t)
	if tr.panel.full != 1 || tr.src.loads[0] != "btc" {
		t.Fatalf("first step: %d full frames, backgrounds %v", tr.panel.full, tr.src.loads)
	}
	// Coin and clock overlays.
	if tr.panel.regions != 2 {
		t.Errorf("first step wrote %d regions, want 2", tr.panel.regions)
	}

	// Same second: only the coin overlay.
	tr.now = tr.now.Add(100 * time.Millisecond)
	tr.step(t)
	if tr.panel.full != 1 || tr.panel.regions != 3 {
		t.Errorf("second step: %d full, %d regions; want 1, 3", tr.panel.full, tr.panel.regions)
	}

	// Next second: coin and clock.
	tr.now = tr.now.Add(time.Second)
	tr.step(t)
	if tr.panel.regions != 5 {
		t.Errorf("third step: %d regions, want 5", tr.panel.regions)
	}

	// Rotation skips the hidden coin and wraps around.
	want := []string{"eth", "sol", "ada", "xrp", "btc"}
	for _, id := range want {
		tr.now = tr.now.Add(20 * time.Second)
		tr.step(t)
		if got := tr.src.loads[len(tr.src.loads)-1]; got != id {
			t.Errorf("after rotation background = %q, want %q", got, id)
		}
	}
	if tr.panel.full != 1+len(want) {
		t.Errorf("%d full frames, want %d", tr.panel.full, 1+len(want))
	}
}

func TestRunnerSetupRoundTrip(t *testing.T) {
	tr := newTestRunner(t)
	tr.step(t)

	if !tr.State.EnterSetup() {
		t.Fatal("EnterSetup() = false")
	}
	tr.step(t)
	tr.step(t)
	if tr.panel.draws != 1 {
		t.Fatalf("setup view drawn %d times, want 1", tr.panel.draws)
	}

	// Hide ETH: its toggle box is on the second row.
	if err := tr.HandleTap(image.Pt(50, setupRowTop+setupRowStep+10)); err != nil {
		t.Fatal(err)
	}
	if tr.Coins.Coins[1].Shown() {
		t.Error("ETH still shown after toggle")
	}
	if tr.panel.draws != 2 {
		t.Errorf("setup view drawn %d times, want 2", tr.panel.draws)
	}

	// SAVE.
	if err := tr.HandleTap(image.Pt(480-100, 320-40)); err != nil {
		t.Fatal(err)
	}
	if tr.State.Mode() != ModeDashboard {
		t.Fatalf("Mode() = %v after SAVE", tr.State.Mode())
	}
	saved, err := config.LoadCoins(tr.Setup.Path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Coins[1].Shown() {
		t.Error("saved coins still show ETH")
	}

	full := tr.panel.full
	tr.step(t)
	if tr.panel.full != full+1 {
		t.Error("leaving setup did not redraw the dashboard")
	}
	// ETH left the rotation.
	tr.now = tr.now.Add(20 * time.Second)
	tr.step(t)
	if got := tr.src.loads[len(tr.src.loads)-1]; got != "sol" {
		t.Errorf("next coin = %q, want sol", got)
	}
}

func TestRunnerDropsTapsOutsideSetup(t *testing.T) {
	tr := newTestRunner(t)
	tr.step(t)
	if err := tr.HandleTap(image.Pt(50, setupRowTop+10)); err != nil {
		t.Fatal(err)
	}
	if !tr.Coins.Coins[0].Shown() || tr.panel.draws != 0 {
		t.Error("tap in dashboard mode reached the setup view")
	}
}

func TestRunnerRun(t *testing.T) {
	tr := newTestRunner(t)
	tr.Tick = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop")
	}
}

// brokenSink fails every write.
type brokenSink struct {
	writes int
}

var errSinkGone = errors.New("sink gone")

func (s *brokenSink) WriteAt(p []byte, off int64) (int, error) {
	s.writes++
	return 0, errSinkGone
}

func TestRunnerClearsOnceAfterWriteFailure(t *testing.T) {
	sink := &brokenSink{}
	dev, err := fbpanel.New(sink, &fbpanel.Opts{W: 480, H: 320, Rotation: drivers.Rotation180})
	if err != nil {
		t.Fatal(err)
	}
	tr := newTestRunnerOn(t, dev)
	var logs bytes.Buffer
	tr.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	err = tr.Run(context.Background())
	if !errors.Is(err, errSinkGone) {
		t.Fatalf("Run() error = %v, want the sink error", err)
	}
	if tr.panel.clears != 1 {
		t.Errorf("Clear called %d times, want 1", tr.panel.clears)
	}
	// The full-frame write of the first redraw, then the clear.
	if sink.writes != 2 {
		t.Errorf("sink saw %d writes, want 2", sink.writes)
	}
	if !strings.Contains(logs.String(), "panel write failed") {
		t.Errorf("failure not logged: %q", logs.String())
	}
}

func TestRunnerNeedsBTC(t *testing.T) {
	r := &Runner{Coins: &config.Coins{Coins: []config.Coin{{ID: "eth"}}}, Logger: quietLogger()}
	if err := r.Run(context.Background()); err == nil {
		t.Error("Run() without a btc coin succeeded")
	}
}

func TestState(t *testing.T) {
	var s State
	if s.Mode() != ModeDashboard {
		t.Fatalf("initial Mode() = %v", s.Mode())
	}
	if !s.EnterSetup() || s.Mode() != ModeSetup {
		t.Fatal("EnterSetup() failed")
	}
	if s.EnterSetup() {
		t.Error("EnterSetup() twice succeeded")
	}
	s.EnterDashboard()
	if s.Mode() != ModeDashboard || s.Mode().String() != "dashboard" {
		t.Errorf("Mode() = %v", s.Mode())
	}
}

// scriptedSource replays events, then returns io.EOF.
type scriptedSource struct {
	events []touch.Event
}

func (s *scriptedSource) ReadEvent() (touch.Event, error) {
	if len(s.events) == 0 {
		return touch.Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func tapEvents(rawX, rawY int32) []touch.Event {
	return []touch.Event{
		{Type: touch.EvAbs, Code: touch.AbsX, Value: rawX},
		{Type: touch.EvAbs, Code: touch.AbsY, Value: rawY},
		{Type: touch.EvKey, Code: touch.BtnTouch, Value: 1},
		{Type: touch.EvKey, Code: touch.BtnTouch, Value: 0},
	}
}

func TestInput(t *testing.T) {
	cal := &touch.Calibration{
		ScreenPoints: []touch.Pair{{0, 0}, {480, 0}, {480, 320}, {0, 320}, {240, 160}},
		RawPoints:    []touch.Pair{{100, 100}, {100, 4000}, {4000, 4000}, {4000, 100}, {2050, 2050}},
	}
	m, err := touch.NewMapper(cal, 480, 320, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	var events []touch.Event
	events = append(events, tapEvents(2050, 2050)...) // centre, ignored
	events = append(events, tapEvents(470, 3840)...)  // (460, 30)
	events = append(events, tapEvents(470, 3840)...)  // second tap: setup
	events = append(events, tapEvents(2050, 2050)...) // forwarded

	taps := make(chan image.Point, 4)
	state := &State{}
	clock := testNow
	in := &Input{
		Reader: touch.NewReader(&scriptedSource{events: events}),
		Mapper: m,
		State:  state,
		Taps:   taps,
		W:      480,
		Now: func() time.Time {
			clock = clock.Add(100 * time.Millisecond)
			return clock
		},
		Logger: quietLogger(),
	}

	if err := in.Run(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Run() error = %v, want io.EOF", err)
	}
	if state.Mode() != ModeSetup {
		t.Fatalf("Mode() = %v, want setup", state.Mode())
	}
	close(taps)
	var got []image.Point
	for p := range taps {
		got = append(got, p)
	}
	if len(got) != 1 || got[0] != image.Pt(240, 160) {
		t.Errorf("forwarded taps = %v, want [(240,160)]", got)
	}
}

func TestInputSkipsContactWithoutPosition(t *testing.T) {
	cal := &touch.Calibration{
		ScreenPoints: []touch.Pair{{0, 0}, {480, 0}, {480, 320}, {0, 320}, {240, 160}},
		RawPoints:    []touch.Pair{{100, 100}, {100, 4000}, {4000, 4000}, {4000, 100}, {2050, 2050}},
	}
	m, err := touch.NewMapper(cal, 480, 320, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	// A contact before any axis event, then a regular tap.
	events := []touch.Event{
		{Type: touch.EvKey, Code: touch.BtnTouch, Value: 1},
		{Type: touch.EvKey, Code: touch.BtnTouch, Value: 0},
	}
	events = append(events, tapEvents(2050, 2050)...)

	taps := make(chan image.Point, 4)
	state := &State{}
	state.EnterSetup()
	in := &Input{
		Reader: touch.NewReader(&scriptedSource{events: events}),
		Mapper: m,
		State:  state,
		Taps:   taps,
		W:      480,
		Logger: quietLogger(),
	}
	if err := in.Run(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Run() error = %v, want io.EOF", err)
	}
	close(taps)
	var got []image.Point
	for p := range taps {
		got = append(got, p)
	}
	if len(got) != 1 || got[0] != image.Pt(240, 160) {
		t.Errorf("forwarded taps = %v, want [(240,160)]", got)
	}
}
