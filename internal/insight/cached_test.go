package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tkordic/anamnesis/internal/cache"
	"github.com/tkordic/anamnesis/internal/imaging"
)

// countingClassifier tracks how many calls reach the wrapped provider
type countingClassifier struct {
	calls  int
	result Classification
	err    error
}

func (c *countingClassifier) Name() string                         { return "counting" }
func (c *countingClassifier) IsAvailable(ctx context.Context) bool { return true }
func (c *countingClassifier) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	result := c.result
	return &result, nil
}

func studyWithDigest(digest string) *imaging.Study {
	return &imaging.Study{Path: "study.png", Format: imaging.FormatPNG, Digest: digest}
}

func TestCachedClassifier_SecondCallHitsCache(t *testing.T) {
	inner := &countingClassifier{result: Classification{Anatomy: "Lung", Model: "counting"}}
	cached := NewCachedClassifier(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	req := ClassifyRequest{Study: studyWithDigest("abc123")}

	first, err := cached.Classify(context.Background(), req)
	if err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	second, err := cached.Classify(context.Background(), req)
	if err != nil {
		t.Fatalf("second Classify() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second call from cache)", inner.calls)
	}
	if first.Anatomy != second.Anatomy {
		t.Errorf("cached anatomy = %q, want %q", second.Anatomy, first.Anatomy)
	}
}

func TestCachedClassifier_DistinctDigestsMiss(t *testing.T) {
	inner := &countingClassifier{result: Classification{Anatomy: "Lung"}}
	cached := NewCachedClassifier(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	if _, err := cached.Classify(context.Background(), ClassifyRequest{Study: studyWithDigest("one")}); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if _, err := cached.Classify(context.Background(), ClassifyRequest{Study: studyWithDigest("two")}); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("provider called %d times, want 2 for distinct digests", inner.calls)
	}
}

func TestCachedClassifier_NoDigestBypassesCache(t *testing.T) {
	inner := &countingClassifier{result: Classification{Anatomy: "Skin"}}
	cached := NewCachedClassifier(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	req := ClassifyRequest{AnatomyHint: "skin"}
	for i := 0; i < 2; i++ {
		if _, err := cached.Classify(context.Background(), req); err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
	}

	if inner.calls != 2 {
		t.Errorf("provider called %d times, want 2 for hint-only requests", inner.calls)
	}
}

func TestCachedClassifier_ErrorsAreNotCached(t *testing.T) {
	inner := &countingClassifier{err: errors.New("backend down")}
	cached := NewCachedClassifier(inner, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	req := ClassifyRequest{Study: studyWithDigest("abc123")}
	for i := 0; i < 2; i++ {
		if _, err := cached.Classify(context.Background(), req); err == nil {
			t.Fatal("expected error from wrapped provider")
		}
	}

	if inner.calls != 2 {
		t.Errorf("provider called %d times, want 2 (errors never cached)", inner.calls)
	}
}
