package view

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/httputil"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
	"github.com/matzehuels/tabpanel/pkg/tabs"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

var fast = Delays{Render: time.Millisecond, Reselect: time.Millisecond, Snapshot: 2 * time.Second}

func quiet() *log.Logger { return log.New(io.Discard) }

func newTestView(t *testing.T, opts ...Option) *View {
	t.Helper()
	opts = append([]Option{WithLogger(quiet()), WithDelays(fast)}, opts...)
	v, err := New(tabs.Default(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(v.Destroy)
	return v
}

func waitSnapshot(t *testing.T, v *View) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	src, err := v.WaitSnapshot(ctx)
	if err != nil {
		t.Fatalf("WaitSnapshot: %v", err)
	}
	return src
}

func TestNew(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, errors.ErrCodeInvalidTab) {
		t.Errorf("New(nil) err = %v, want INVALID_TAB", err)
	}
	v := newTestView(t)
	if v.Selected() != 0 {
		t.Errorf("Selected = %d, want 0", v.Selected())
	}
	if v.ChartIndex() != 0 {
		t.Errorf("ChartIndex = %d, want 0", v.ChartIndex())
	}
	if v.Filename() != DefaultFilename {
		t.Errorf("Filename = %q", v.Filename())
	}
}

func TestSetIndex(t *testing.T) {
	v := newTestView(t)
	tests := []struct {
		i       int
		wantErr bool
	}{
		{1, false},
		{2, false},
		{0, false},
		{3, true},
		{-1, true},
	}
	for _, tt := range tests {
		err := v.SetIndex(tt.i)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetIndex(%d) err = %v, wantErr %v", tt.i, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidTab) {
			t.Errorf("SetIndex(%d) code = %v", tt.i, errors.GetCode(err))
		}
		if err == nil && v.Selected() != tt.i {
			t.Errorf("Selected = %d, want %d", v.Selected(), tt.i)
		}
	}
}

func TestRenderWithoutCanvas(t *testing.T) {
	v := newTestView(t, WithInteractive(true))
	v.Render()
	v.AfterViewInit()
	time.Sleep(20 * time.Millisecond)
	if v.Snapshot() != "" {
		t.Error("snapshot captured without a canvas")
	}
}

func TestNonInteractiveDoesNotSchedule(t *testing.T) {
	v := newTestView(t)
	v.AttachCanvas(chart.NewCanvas(200, 100))
	v.AfterViewInit()
	if err := v.SetIndex(0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if v.Canvas().Live() {
		t.Error("non-interactive view rendered on its own")
	}
}

func TestSnapshotAfterInit(t *testing.T) {
	v := newTestView(t, WithInteractive(true))
	v.AttachCanvas(chart.NewCanvas(400, 200))
	v.AfterViewInit()

	src := waitSnapshot(t, v)
	if !strings.HasPrefix(src, "data:image/png;base64,") || len(src) <= len("data:image/png;base64,") {
		t.Errorf("snapshot = %.40q", src)
	}
	if v.Snapshot() != src {
		t.Error("Snapshot() disagrees with WaitSnapshot")
	}
}

func TestOneLiveChart(t *testing.T) {
	v := newTestView(t)
	v.AttachCanvas(chart.NewCanvas(200, 100))

	var charts []*chart.Chart
	for range 10 {
		v.Render()
		v.mu.Lock()
		charts = append(charts, v.chart)
		v.mu.Unlock()
	}
	for i, ch := range charts {
		if ch == nil {
			t.Fatalf("render %d produced no chart", i)
		}
		if last := i == len(charts)-1; ch.Destroyed() == last {
			t.Errorf("chart %d destroyed = %v", i, ch.Destroyed())
		}
	}
	waitSnapshot(t, v)
}

func TestReselectRerenders(t *testing.T) {
	v := newTestView(t, WithInteractive(true))
	v.AttachCanvas(chart.NewCanvas(200, 100))
	v.AfterViewInit()
	waitSnapshot(t, v)

	v.mu.Lock()
	first := v.chart
	v.mu.Unlock()

	if err := v.SetIndex(0); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !first.Destroyed() {
		if time.Now().After(deadline) {
			t.Fatal("selecting the chart tab did not re-render")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResizeRefreshesSnapshot(t *testing.T) {
	v := newTestView(t)
	c := chart.NewCanvas(300, 150)
	v.AttachCanvas(c)
	v.Render()
	before := waitSnapshot(t, v)

	if err := v.Resize(900, 300); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := c.Padding().Right; got != chart.WidePadding {
		t.Errorf("padding = %d, want %d", got, chart.WidePadding)
	}
	if v.Snapshot() == before {
		t.Error("snapshot not refreshed after resize")
	}
}

func TestAllTabsHTML(t *testing.T) {
	v := newTestView(t)

	got := v.AllTabsHTML()
	if !strings.HasPrefix(got, `<div class="tab-page"></div>`) {
		t.Errorf("chart section not empty before snapshot: %.80s", got)
	}

	v.AttachCanvas(chart.NewCanvas(300, 150))
	v.Render()
	snap := waitSnapshot(t, v)

	got = v.AllTabsHTML()
	if n := strings.Count(got, `<div class="tab-page">`); n != 3 {
		t.Errorf("sections = %d, want 3", n)
	}
	if strings.Contains(got, "<canvas") {
		t.Error("output contains a canvas")
	}
	if !strings.Contains(got, "<h2>Simple Pie Chart</h2>") || !strings.Contains(got, snap) {
		t.Error("chart section missing heading or snapshot")
	}
	chartAt := strings.Index(got, "Simple Pie Chart")
	profileAt := strings.Index(got, "Samantha")
	if chartAt < 0 || profileAt < 0 || chartAt > profileAt {
		t.Error("sections out of tab order")
	}
}

func TestAllTabsHTMLTabOrder(t *testing.T) {
	list := []tabs.Tab{
		{ID: "a", Title: "A", HTML: "<p>first static</p>"},
		{ID: "c", Title: "C", Chart: true},
		{ID: "b", Title: "B", HTML: "<p>second static</p>"},
	}
	v, err := New(list, WithLogger(quiet()))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Destroy()

	want := `<div class="tab-page"><p>first static</p></div>` +
		`<div class="tab-page"></div>` +
		`<div class="tab-page"><p>second static</p></div>`
	if got := v.AllTabsHTML(); got != want {
		t.Errorf("before snapshot: AllTabsHTML = %q, want %q", got, want)
	}

	v.AttachCanvas(chart.NewCanvas(300, 150))
	v.Render()
	waitSnapshot(t, v)

	got := v.AllTabsHTML()
	first := strings.Index(got, "first static")
	pie := strings.Index(got, "Simple Pie Chart")
	second := strings.Index(got, "second static")
	if first < 0 || pie < 0 || second < 0 || !(first < pie && pie < second) {
		t.Errorf("sections out of tab order: first=%d pie=%d second=%d", first, pie, second)
	}
}

type fakeExporter struct {
	fragment, filename string
}

func (f *fakeExporter) Build(_ context.Context, fragment, filename string) (*export.Document, error) {
	f.fragment, f.filename = fragment, filename
	return &export.Document{Filename: filename}, nil
}

func (f *fakeExporter) GenerateDocument(_ context.Context, fragment, filename string, _ export.Downloader) error {
	f.fragment, f.filename = fragment, filename
	return nil
}

func TestExportDelegates(t *testing.T) {
	fx := &fakeExporter{}
	v := newTestView(t, WithExporter(fx))

	if _, err := v.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if fx.filename != DefaultFilename {
		t.Errorf("filename = %q, want %q", fx.filename, DefaultFilename)
	}
	if fx.fragment != v.AllTabsHTML() {
		t.Error("exporter got a different fragment")
	}

	noExp := newTestView(t)
	if err := noExp.Download(context.Background(), export.WriterDownloader{W: io.Discard}); err == nil {
		t.Error("Download without exporter succeeded")
	}
}

type captureRenderer struct{ in sink.Input }

func (r *captureRenderer) Render(_ context.Context, in sink.Input) ([]byte, error) {
	r.in = in
	return []byte("ok"), nil
}

func TestExportScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG\r\n\x1a\navatar"))
	}))
	defer srv.Close()

	list := []tabs.Tab{
		{ID: "chart", Title: "Chart", Chart: true},
		{ID: "profile", Title: "Profile", HTML: `<img src="` + srv.URL + `/avatar.png"/><h3>Sarah</h3>`},
		{ID: "social", Title: "Social", HTML: `<img src="` + pixel + `"/><canvas></canvas>`},
	}
	r := &captureRenderer{}
	svc := export.NewService(httputil.NewFetcher(), r, quiet())
	v, err := New(list, WithLogger(quiet()), WithDelays(fast), WithExporter(svc))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Destroy()
	v.AttachCanvas(chart.NewCanvas(300, 150))
	v.Render()
	waitSnapshot(t, v)

	var got []byte
	dst := export.DownloaderFunc(func(_ context.Context, doc *export.Document) error {
		got = doc.Data
		return nil
	})
	if err := v.Download(context.Background(), dst); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("downloaded %q", got)
	}

	html := r.in.HTML
	if n := strings.Count(html, `class="tab-page"`); n != 3 {
		t.Errorf("sections = %d, want 3", n)
	}
	if strings.Contains(html, "<canvas") {
		t.Error("canvas survived export")
	}
	srcs := regexp.MustCompile(`src="([^"]*)"`).FindAllStringSubmatch(html, -1)
	if len(srcs) != 3 {
		t.Fatalf("images = %d, want 3", len(srcs))
	}
	for _, m := range srcs {
		if !strings.HasPrefix(m[1], "data:") {
			t.Errorf("image not embedded: %.60s", m[1])
		}
	}
}

func TestDestroy(t *testing.T) {
	v := newTestView(t, WithInteractive(true))
	c := chart.NewCanvas(200, 100)
	v.AttachCanvas(c)
	v.AfterViewInit()
	v.Destroy()
	v.Destroy()

	time.Sleep(20 * time.Millisecond)
	if c.Live() {
		t.Error("pending render ran after Destroy")
	}
	if _, err := v.WaitSnapshot(context.Background()); !stderrors.Is(err, ErrDestroyed) {
		t.Errorf("WaitSnapshot err = %v, want ErrDestroyed", err)
	}
	if err := v.SetIndex(0); !stderrors.Is(err, ErrDestroyed) {
		t.Errorf("SetIndex err = %v, want ErrDestroyed", err)
	}
}

func TestWaitSnapshotCanceled(t *testing.T) {
	v := newTestView(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := v.WaitSnapshot(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}
