package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hukukpanel/kararfetch/internal/retrieve"
)

func TestStore_RoundTrip(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	ctx := context.Background()

	want := retrieve.Outcome{
		Success:          true,
		Content:          "Mahkemece davanın kabulüne karar verilmiştir.",
		ContentType:      retrieve.ContentTypeText,
		SourceURL:        "https://ornek.gov.tr/detay?id=1",
		Source:           "yargitay",
		ExtractionMethod: "attempt 1 decision-containers div.karar-metni (plain)",
	}
	if err := s.Save(ctx, "yargitay", "2021/1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "yargitay", "2021/1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestStore_MissForUnknownKey(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	if _, err := s.Load(context.Background(), "yargitay", "yok"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	ctx := context.Background()
	if err := s.Save(ctx, "yargitay", "1", retrieve.Outcome{Content: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.Load(ctx, "danistay", "1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss for other source, got %v", err)
	}
	if _, err := s.Load(ctx, "yargitay", "2"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss for other document, got %v", err)
	}
}

func TestStore_MaxAgeInvalidates(t *testing.T) {
	s := &Store{Dir: t.TempDir(), MaxAge: time.Nanosecond}
	ctx := context.Background()
	if err := s.Save(ctx, "yargitay", "1", retrieve.Outcome{Content: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := s.Load(ctx, "yargitay", "1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected stale entry to miss, got %v", err)
	}
}

func TestStore_Clear(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	ctx := context.Background()
	if err := s.Save(ctx, "yargitay", "1", retrieve.Outcome{Content: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(ctx, "yargitay", "1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss after clear, got %v", err)
	}
}
