package pagination

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeRenderer struct {
	mu       sync.Mutex
	requests []RenderRequest
	clears   int
	fail     error
	// block, when set, holds RenderPage until it is closed.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRenderer) RenderPage(ctx context.Context, req RenderRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, started, fail := f.block, f.started, f.fail
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return fail
}

func (f *fakeRenderer) ClearFullscreen() {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
}

func (f *fakeRenderer) renders() []RenderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RenderRequest(nil), f.requests...)
}

func loaded(t *testing.T, total int, opts Options) (*Controller, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	c := New(r, opts)
	if _, err := c.Load(context.Background(), total); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c, r
}

func TestLoad(t *testing.T) {
	c, r := loaded(t, 10, Options{})

	st := c.Status()
	if st.Page != 1 || st.Total != 10 {
		t.Errorf("Status() page %d of %d, expected 1 of 10", st.Page, st.Total)
	}
	got := r.renders()
	if len(got) != 1 || got[0].Reason != ReasonLoad || got[0].Page != 1 {
		t.Errorf("renders = %+v, expected one load render of page 1", got)
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	c, r := loaded(t, 0, Options{})

	if ok, _ := c.Next(context.Background()); ok {
		t.Error("Next() on empty document should be a no-op")
	}
	if n := len(r.renders()); n != 0 {
		t.Errorf("expected no renders, got %d", n)
	}
	if p := c.Status().Progress; p != 0 {
		t.Errorf("Progress = %v, expected 0", p)
	}
}

func TestNextThreeTimes(t *testing.T) {
	c, r := loaded(t, 10, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, err := c.Next(ctx); !ok || err != nil {
			t.Fatalf("Next() = %v, %v", ok, err)
		}
	}

	st := c.Status()
	if st.Page != 4 {
		t.Errorf("Page = %d, expected 4", st.Page)
	}
	if st.Progress != 40 {
		t.Errorf("Progress = %v, expected 40", st.Progress)
	}
	if n := len(r.renders()); n != 4 {
		t.Errorf("expected 4 renders (load + 3), got %d", n)
	}
}

func TestBoundaries(t *testing.T) {
	c, r := loaded(t, 3, Options{})
	ctx := context.Background()

	if ok, _ := c.Previous(ctx); ok {
		t.Error("Previous() at page 1 should be a no-op")
	}

	c.Last(ctx)
	if p := c.Status().Page; p != 3 {
		t.Fatalf("Last() page = %d, expected 3", p)
	}
	before := len(r.renders())
	if ok, _ := c.Next(ctx); ok {
		t.Error("Next() at last page should be a no-op")
	}
	if got := len(r.renders()); got != before {
		t.Errorf("Next() at last page rendered %d times", got-before)
	}

	c.First(ctx)
	if p := c.Status().Page; p != 1 {
		t.Errorf("First() page = %d, expected 1", p)
	}
}

func TestGoTo(t *testing.T) {
	tests := []struct {
		name     string
		target   int
		moved    bool
		expected int
	}{
		{"valid page", 5, true, 5},
		{"current page", 1, false, 1},
		{"zero", 0, false, 1},
		{"past the end", 11, false, 1},
		{"negative", -2, false, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, _ := loaded(t, 10, Options{})
			ok, err := c.GoTo(context.Background(), test.target)
			if err != nil {
				t.Fatalf("GoTo() error = %v", err)
			}
			if ok != test.moved {
				t.Errorf("GoTo(%d) = %v, expected %v", test.target, ok, test.moved)
			}
			if p := c.Status().Page; p != test.expected {
				t.Errorf("Page = %d, expected %d", p, test.expected)
			}
		})
	}
}

func TestGoToTwiceRendersOnce(t *testing.T) {
	for n := 1; n <= 6; n++ {
		c, r := loaded(t, 6, Options{})
		ctx := context.Background()
		before := len(r.renders())

		c.GoTo(ctx, n)
		first := len(r.renders())
		c.GoTo(ctx, n)

		if got := len(r.renders()); got != first {
			t.Errorf("GoTo(%d) twice rendered %d extra times", n, got-first)
		}
		if n == 1 && first != before {
			t.Errorf("GoTo(1) on page 1 rendered")
		}
		if p := c.Status().Page; p != n {
			t.Errorf("Page = %d, expected %d", p, n)
		}
	}
}

func TestRequestsDroppedWhileRendering(t *testing.T) {
	c, r := loaded(t, 10, Options{})
	ctx := context.Background()

	r.mu.Lock()
	r.block = make(chan struct{})
	r.started = make(chan struct{}, 1)
	r.mu.Unlock()

	done := make(chan error)
	go func() {
		_, err := c.Next(ctx)
		done <- err
	}()
	<-r.started

	before := c.Status()
	if before.State != Rendering {
		t.Fatalf("State = %v, expected rendering", before.State)
	}

	if ok, _ := c.Next(ctx); ok {
		t.Error("Next() during render should be dropped")
	}
	if ok, _ := c.Previous(ctx); ok {
		t.Error("Previous() during render should be dropped")
	}
	if ok, _ := c.GoTo(ctx, 7); ok {
		t.Error("GoTo() during render should be dropped")
	}
	if ok, _ := c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800}); ok {
		t.Error("EnterFullscreen() during render should be dropped")
	}

	if diff := cmp.Diff(before, c.Status()); diff != "" {
		t.Errorf("state changed during dropped requests (-before +after):\n%s", diff)
	}

	close(r.block)
	if err := <-done; err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if st := c.Status(); st.State != Idle || st.Page != 2 {
		t.Errorf("after render: state %v page %d, expected idle page 2", st.State, st.Page)
	}
}

func TestRenderFailureKeepsIndex(t *testing.T) {
	c, r := loaded(t, 5, Options{})
	boom := errors.New("corrupt page")
	r.fail = boom

	ok, err := c.Next(context.Background())
	if !ok {
		t.Fatal("Next() should run the cycle")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Next() error = %v, expected %v", err, boom)
	}

	st := c.Status()
	if st.Page != 2 || st.State != Idle {
		t.Errorf("after failure: page %d state %v, expected page 2 idle", st.Page, st.State)
	}

	r.fail = nil
	if ok, _ := c.Next(context.Background()); !ok {
		t.Error("guard should be released after a failed render")
	}
}

func TestZoomClamps(t *testing.T) {
	c, _ := loaded(t, 3, Options{})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		c.ZoomOut(ctx)
	}
	if z := c.Zoom(); z != MinZoom {
		t.Errorf("Zoom after zoom-out chain = %v, expected %v", z, MinZoom)
	}

	for i := 0; i < 30; i++ {
		c.ZoomIn(ctx)
	}
	if z := c.Zoom(); z != MaxZoom {
		t.Errorf("Zoom after zoom-in chain = %v, expected %v", z, MaxZoom)
	}

	tests := []struct {
		in       float64
		expected float64
	}{
		{0.3, 0.5},
		{3.5, 3.0},
		{1.26, 1.26},
		{0.55, 0.55},
		{1, 1},
	}
	for _, test := range tests {
		got, err := c.SetZoom(ctx, test.in)
		if err != nil {
			t.Fatalf("SetZoom(%v) error = %v", test.in, err)
		}
		if got != test.expected {
			t.Errorf("SetZoom(%v) = %v, expected %v", test.in, got, test.expected)
		}
	}
}

func TestZoomStepsFromUnroundedLevel(t *testing.T) {
	c, _ := loaded(t, 3, Options{})
	ctx := context.Background()

	if _, err := c.SetZoom(ctx, 1.26); err != nil {
		t.Fatalf("SetZoom() error = %v", err)
	}
	got, err := c.ZoomIn(ctx)
	if err != nil {
		t.Fatalf("ZoomIn() error = %v", err)
	}
	if got != 1.4 {
		t.Errorf("ZoomIn from 1.26 = %v, expected 1.4", got)
	}

	for i := 0; i < 7; i++ {
		c.ZoomOut(ctx)
	}
	if z := c.Zoom(); z != 0.7 {
		t.Errorf("Zoom after seven steps down = %v, expected 0.7", z)
	}
}

func TestZoomRendersOnlyInFullscreen(t *testing.T) {
	c, r := loaded(t, 4, Options{})
	ctx := context.Background()
	c.Next(ctx)

	before := len(r.renders())
	c.ZoomIn(ctx)
	if got := len(r.renders()); got != before {
		t.Errorf("zoom outside fullscreen rendered %d times", got-before)
	}

	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})
	c.ZoomIn(ctx)

	renders := r.renders()
	last := renders[len(renders)-1]
	if last.Reason != ReasonZoom || !last.Fullscreen || !last.ResetScroll {
		t.Errorf("last render = %+v, expected fullscreen zoom render with scroll reset", last)
	}
	if last.Zoom != 1.2 {
		t.Errorf("Zoom = %v, expected 1.2", last.Zoom)
	}
	if p := c.Status().Page; p != 2 {
		t.Errorf("zoom changed page to %d", p)
	}
}

func TestFullscreenEnterExit(t *testing.T) {
	c, r := loaded(t, 4, Options{})
	ctx := context.Background()
	c.GoTo(ctx, 3)

	window := Size{Width: 1200, Height: 900}
	if ok, err := c.EnterFullscreen(ctx, window); !ok || err != nil {
		t.Fatalf("EnterFullscreen() = %v, %v", ok, err)
	}

	st := c.Status()
	if st.State != FullscreenIdle || st.EnteredFrom != 3 {
		t.Errorf("state %v entered from %d, expected fullscreen-idle from 3", st.State, st.EnteredFrom)
	}
	renders := r.renders()
	enter := renders[len(renders)-1]
	if enter.Reason != ReasonEnter || enter.Window != window || enter.Surface == 0 {
		t.Errorf("enter render = %+v", enter)
	}

	if ok, _ := c.EnterFullscreen(ctx, window); ok {
		t.Error("EnterFullscreen() twice should be a no-op")
	}

	c.Next(ctx)
	renders = r.renders()
	turn := renders[len(renders)-1]
	if turn.Surface <= enter.Surface {
		t.Errorf("each fullscreen render should get a new surface: %d then %d", enter.Surface, turn.Surface)
	}

	if !c.ExitFullscreen() {
		t.Fatal("ExitFullscreen() = false")
	}
	if r.clears != 1 {
		t.Errorf("ClearFullscreen called %d times, expected 1", r.clears)
	}
	st = c.Status()
	if st.Fullscreen || st.Surface != 0 || st.Page != 4 {
		t.Errorf("after exit: %+v", st)
	}
	if c.ExitFullscreen() {
		t.Error("ExitFullscreen() outside fullscreen should be a no-op")
	}
}

func TestExitDuringFullscreenRenderClearsAgain(t *testing.T) {
	c, r := loaded(t, 4, Options{})
	ctx := context.Background()
	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})

	r.mu.Lock()
	r.block = make(chan struct{})
	r.started = make(chan struct{}, 1)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.Next(ctx)
		close(done)
	}()
	<-r.started

	c.ExitFullscreen()
	close(r.block)
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clears != 2 {
		t.Errorf("ClearFullscreen called %d times, expected 2", r.clears)
	}
}

func TestScrollEdgePagination(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		sample   ScrollSample
		expected int
	}{
		{"bottom turns forward", 2, ScrollSample{Top: 960, Height: 2000, ClientHeight: 1000}, 3},
		{"top turns back", 2, ScrollSample{Top: 10, Height: 2000, ClientHeight: 1000}, 1},
		{"middle stays", 2, ScrollSample{Top: 500, Height: 2000, ClientHeight: 1000}, 2},
		{"bottom at last page stays", 4, ScrollSample{Top: 1000, Height: 2000, ClientHeight: 1000}, 4},
		{"top at first page stays", 1, ScrollSample{Top: 0, Height: 2000, ClientHeight: 1000}, 1},
		{"short page prefers forward", 2, ScrollSample{Top: 0, Height: 900, ClientHeight: 900}, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, _ := loaded(t, 4, Options{ScrollSettle: 10 * time.Millisecond})
			ctx := context.Background()
			c.GoTo(ctx, test.start)
			c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})

			surface := c.Status().Surface
			if !c.Scroll(surface, test.sample) {
				t.Fatal("Scroll() rejected the current surface")
			}

			time.Sleep(80 * time.Millisecond)
			if p := c.Status().Page; p != test.expected {
				t.Errorf("Page = %d, expected %d", p, test.expected)
			}
		})
	}
}

func TestScrollDebounceUsesSettledSample(t *testing.T) {
	c, _ := loaded(t, 4, Options{ScrollSettle: 40 * time.Millisecond})
	ctx := context.Background()
	c.GoTo(ctx, 2)
	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})
	surface := c.Status().Surface

	// Passes the bottom edge, then settles in the middle.
	c.Scroll(surface, ScrollSample{Top: 1000, Height: 2000, ClientHeight: 1000})
	c.Scroll(surface, ScrollSample{Top: 500, Height: 2000, ClientHeight: 1000})

	time.Sleep(150 * time.Millisecond)
	if p := c.Status().Page; p != 2 {
		t.Errorf("Page = %d, expected 2", p)
	}
}

func TestScrollIgnoresStaleSurfaces(t *testing.T) {
	c, _ := loaded(t, 4, Options{ScrollSettle: 10 * time.Millisecond})
	ctx := context.Background()

	if c.Scroll(1, ScrollSample{Top: 1000, Height: 1000}) {
		t.Error("Scroll() outside fullscreen should be ignored")
	}

	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})
	old := c.Status().Surface
	c.SetZoom(ctx, 1.5)

	if c.Scroll(old, ScrollSample{Top: 1000, Height: 2000, ClientHeight: 1000}) {
		t.Error("Scroll() from a replaced surface should be ignored")
	}
	time.Sleep(60 * time.Millisecond)
	if p := c.Status().Page; p != 1 {
		t.Errorf("Page = %d, expected 1", p)
	}
}

func TestScrollAfterExitDoesNothing(t *testing.T) {
	c, _ := loaded(t, 4, Options{ScrollSettle: 30 * time.Millisecond})
	ctx := context.Background()
	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})

	c.Scroll(c.Status().Surface, ScrollSample{Top: 1000, Height: 2000, ClientHeight: 1000})
	c.ExitFullscreen()

	time.Sleep(100 * time.Millisecond)
	if p := c.Status().Page; p != 1 {
		t.Errorf("Page = %d, expected 1", p)
	}
}

func TestScrollErrorsReported(t *testing.T) {
	var mu sync.Mutex
	var reported error
	c, r := loaded(t, 4, Options{
		ScrollSettle: 10 * time.Millisecond,
		OnScrollError: func(err error) {
			mu.Lock()
			reported = err
			mu.Unlock()
		},
	})
	ctx := context.Background()
	c.EnterFullscreen(ctx, Size{Width: 1000, Height: 800})

	boom := errors.New("bad page")
	r.mu.Lock()
	r.fail = boom
	r.mu.Unlock()

	c.Scroll(c.Status().Surface, ScrollSample{Top: 1000, Height: 2000, ClientHeight: 1000})
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(reported, boom) {
		t.Errorf("reported error = %v, expected %v", reported, boom)
	}
}

func TestStateString(t *testing.T) {
	if got := FullscreenRendering.String(); got != "fullscreen-rendering" {
		t.Errorf("String() = %q", got)
	}
	if got := ReasonZoom.String(); got != "zoom" {
		t.Errorf("String() = %q", got)
	}
}

func TestLoadWaitsForInflightRender(t *testing.T) {
	c, r := loaded(t, 10, Options{})
	ctx := context.Background()

	r.mu.Lock()
	r.block = make(chan struct{})
	r.started = make(chan struct{}, 2)
	r.mu.Unlock()

	go c.Next(ctx)
	<-r.started

	loadDone := make(chan struct{})
	go func() {
		c.Load(ctx, 3)
		close(loadDone)
	}()

	select {
	case <-loadDone:
		t.Fatal("Load() returned while a render was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(r.block)
	<-loadDone

	st := c.Status()
	if st.Page != 1 || st.Total != 3 {
		t.Errorf("after Load: page %d of %d, expected 1 of 3", st.Page, st.Total)
	}
	renders := r.renders()
	if last := renders[len(renders)-1]; last.Reason != ReasonLoad || last.Total != 3 {
		t.Errorf("last render = %+v, expected load of new document", last)
	}
}
