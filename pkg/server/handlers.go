package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tabpanel/pkg/buildinfo"
	"github.com/matzehuels/tabpanel/pkg/dataurl"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/session"
)

type tabLink struct {
	Index  int
	Title  string
	Active bool
}

type pageData struct {
	Title    string
	Tabs     []tabLink
	IsChart  bool
	Content  template.HTML
	Filename string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View
	selected := v.Selected()

	data := pageData{
		Title:    s.title,
		IsChart:  selected == v.ChartIndex(),
		Filename: v.Filename(),
	}
	for i, t := range v.Tabs() {
		data.Tabs = append(data.Tabs, tabLink{Index: i, Title: t.Title, Active: i == selected})
	}
	if !data.IsChart {
		// Tab markup is sanitized when tabs are loaded.
		data.Content = template.HTML(v.Tabs()[selected].HTML)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidTab, "tab index %q is not a number", chi.URLParam(r, "index")))
		return
	}
	if err := v.SetIndex(i); err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View
	if v.ChartIndex() < 0 {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "panel has no chart tab"))
		return
	}

	if q := r.URL.Query(); q.Get("width") != "" {
		width, err := strconv.Atoi(q.Get("width"))
		if err != nil || width <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", q.Get("width")))
			return
		}
		height := 0
		if c := v.Canvas(); c != nil {
			_, height = c.Size()
		}
		if h := q.Get("height"); h != "" {
			if height, err = strconv.Atoi(h); err != nil || height <= 0 {
				s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid height %q", h))
				return
			}
		}
		if err := v.Resize(width, height); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeChartFailed, err, "resize chart"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.snapshotWait)
	defer cancel()
	src, err := v.WaitSnapshot(ctx)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "chart not ready")
		}
		s.writeError(w, err)
		return
	}
	mediaType, data, err := dataurl.Decode(src)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "decode snapshot"))
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	err := sess.View.Download(r.Context(), export.DownloaderFunc(func(_ context.Context, doc *export.Document) error {
		w.Header().Set("Content-Type", doc.MediaType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
		_, err := w.Write(doc.Data)
		return err
	}))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("exported", "session", shortID(sess), "file", sess.View.Filename())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok", "version": buildinfo.Version}
	if m, ok := s.store.(*session.MemoryStore); ok {
		body["sessions"] = m.Len()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "err", err)
	}
	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func shortID(sess *session.Session) string {
	if len(sess.ID) > 8 {
		return sess.ID[:8]
	}
	return sess.ID
}
