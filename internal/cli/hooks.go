package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/observability"
)

// debugHooks logs every pipeline event at debug level.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l.WithPrefix("hooks")}
	observability.SetExportHooks(h)
	observability.SetChartHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnEmbedStart(_ context.Context, id string, images int) {
	h.logger.Debug("embed start", "export", short(id), "images", images)
}

func (h debugHooks) OnEmbedComplete(_ context.Context, id string, embedded, dropped int, d time.Duration) {
	h.logger.Debug("embed done", "export", short(id), "embedded", embedded, "dropped", dropped, "duration", d)
}

func (h debugHooks) OnRenderStart(_ context.Context, id, format string) {
	h.logger.Debug("render start", "export", short(id), "format", format)
}

func (h debugHooks) OnRenderComplete(_ context.Context, id, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "export", short(id), "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "export", short(id), "format", format, "bytes", size, "duration", d)
}

func (h debugHooks) OnChartRender(_ context.Context, w, ht int, d time.Duration, err error) {
	h.logger.Debug("chart painted", "size", sizeString(w, ht), "duration", d, "err", err)
}

func (h debugHooks) OnSnapshot(_ context.Context, size int) {
	h.logger.Debug("chart snapshot", "bytes", size)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetch", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "host", host, "path", path, "status", status, "duration", d)
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("fetch failed", "host", host, "path", path, "err", err)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
