package session

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/tabs"
	"github.com/matzehuels/tabpanel/pkg/view"
)

func newView() (*view.View, error) {
	v, err := view.New(tabs.Default(), view.WithLogger(log.New(io.Discard)))
	if err != nil {
		return nil, err
	}
	v.AttachCanvas(chart.NewCanvas(100, 50))
	return v, nil
}

func newStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStore(newView, ttl, log.New(io.Discard))
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateID()
	if a == b {
		t.Error("GenerateID returned the same ID twice")
	}
	if len(a) != 44 {
		t.Errorf("len = %d, want 44", len(a))
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Minute)
	defer s.Close()

	sess, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.View != sess.View {
		t.Error("Get returned a different view")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeSessionNotFound) || !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if sess.View.Canvas() != nil {
		t.Error("deleted session's view not destroyed")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := newStore(time.Minute)
	defer s.Close()

	a, _ := s.Create(ctx)
	b, _ := s.Create(ctx)
	a.ExpiresAt = time.Now().Add(-time.Second)

	n, err := s.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Cleanup = %d, %v; want 1", n, err)
	}
	if _, err := s.Get(ctx, b.ID); err != nil {
		t.Errorf("live session removed: %v", err)
	}

	b.ExpiresAt = time.Now().Add(-time.Second)
	if _, err := s.Get(ctx, b.ID); !stderrors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) err = %v, want ErrExpired", err)
	}
	if b.View.Canvas() != nil {
		t.Error("expired view not destroyed")
	}
}

func TestMemoryStoreClose(t *testing.T) {
	ctx := context.Background()
	s := newStore(0)
	sess, _ := s.Create(ctx)
	s.Close()

	if sess.View.Canvas() != nil {
		t.Error("Close did not destroy views")
	}
	if _, err := s.Create(ctx); err == nil {
		t.Error("Create after Close succeeded")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	st, err := s.Load()
	if err != nil || st != nil {
		t.Fatalf("Load(empty) = %v, %v", st, err)
	}

	if err := s.Save(&State{TabID: "tab-2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.TabID != "tab-2" || st.UpdatedAt.IsZero() {
		t.Errorf("Load = %+v", st)
	}
	if s.Path() != path {
		t.Errorf("Path = %q", s.Path())
	}
}
