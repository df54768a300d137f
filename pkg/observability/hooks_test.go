package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExportHooks{}
	e.OnEmbedStart(ctx, "id", 3)
	e.OnEmbedComplete(ctx, "id", 2, 1, time.Second)
	e.OnRenderStart(ctx, "id", "pdf")
	e.OnRenderComplete(ctx, "id", "pdf", 1024, time.Second, nil)

	ch := NoopChartHooks{}
	ch.OnChartRender(ctx, 900, 400, time.Millisecond, nil)
	ch.OnSnapshot(ctx, 2048)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "image")
	c.OnCacheMiss(ctx, "image")
	c.OnCacheSet(ctx, "image", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/a.png")
	h.OnResponse(ctx, "GET", "example.com", "/a.png", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/a.png", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Chart().(NoopChartHooks); !ok {
		t.Error("Chart() should return NoopChartHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	customChart := &testChartHooks{}
	SetChartHooks(customChart)
	if Chart() != customChart {
		t.Error("SetChartHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
	if _, ok := Chart().(NoopChartHooks); !ok {
		t.Error("Reset() should restore NoopChartHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testExportHooks{}
	SetExportHooks(custom)
	SetExportHooks(nil)

	if Export() != custom {
		t.Error("SetExportHooks(nil) should be ignored")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	rec := &recordingExportHooks{}
	SetExportHooks(rec)

	ctx := context.Background()
	Export().OnRenderStart(ctx, "x", "pdf")
	Export().OnRenderComplete(ctx, "x", "pdf", 0, 0, errors.New("boom"))

	if rec.starts != 1 || rec.failures != 1 {
		t.Errorf("recorded starts=%d failures=%d, want 1 and 1", rec.starts, rec.failures)
	}
}

// Test implementations
type testExportHooks struct {
	NoopExportHooks
	_ int
}
type testChartHooks struct {
	NoopChartHooks
	_ int
}
type testCacheHooks struct {
	NoopCacheHooks
	_ int
}
type testHTTPHooks struct {
	NoopHTTPHooks
	_ int
}

type recordingExportHooks struct {
	NoopExportHooks
	starts, failures int
}

func (r *recordingExportHooks) OnRenderStart(context.Context, string, string) { r.starts++ }
func (r *recordingExportHooks) OnRenderComplete(_ context.Context, _, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		r.failures++
	}
}
