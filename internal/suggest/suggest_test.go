package suggest

import (
	"math"
	"testing"

	"github.com/coder/hnsw"
)

func TestVectorIsNormalised(t *testing.T) {
	for _, name := range []string{"x", "make-adder", "λ"} {
		var sum float64
		for _, v := range Vector(name) {
			sum += float64(v) * float64(v)
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Errorf("%s: expected unit length, got %f", name, sum)
		}
	}
}

func TestSimilarNamesAreClose(t *testing.T) {
	near := hnsw.CosineDistance(Vector("length"), Vector("lenght"))
	far := hnsw.CosineDistance(Vector("length"), Vector("map"))
	if near >= far {
		t.Errorf("expected transposition closer than unrelated name: %f >= %f", near, far)
	}
	if near > MaxDistance {
		t.Errorf("expected transposition within %f, got %f", MaxDistance, near)
	}
}

func TestNearest(t *testing.T) {
	ix := New("length", "append", "reverse", "map", "nth", "make-adder")

	got := ix.Nearest("lenght", 3)
	if len(got) == 0 || got[0] != "length" {
		t.Errorf("expected length first, got %v", got)
	}
	for _, n := range got {
		if n == "map" || n == "nth" {
			t.Errorf("unrelated name %s suggested for lenght", n)
		}
	}

	if got := ix.Nearest("zzzzqqq", 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestNearestExcludesQuery(t *testing.T) {
	ix := New("reverse", "revers")
	got := ix.Nearest("reverse", 5)
	if len(got) != 1 || got[0] != "revers" {
		t.Errorf("expected only revers, got %v", got)
	}
}

func TestAdd(t *testing.T) {
	ix := New()
	if got := ix.Nearest("anything", 2); got != nil {
		t.Errorf("empty index should suggest nothing, got %v", got)
	}
	ix.Add("append")
	ix.Add("append")
	if ix.Len() != 1 {
		t.Errorf("expected 1 name, got %d", ix.Len())
	}
	if got := ix.Nearest("apend", 1); len(got) != 1 || got[0] != "append" {
		t.Errorf("expected append, got %v", got)
	}
}
