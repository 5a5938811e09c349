package proxy

import "testing"

func TestPool_RoundRobin(t *testing.T) {
	p := NewPool([]string{"http://a:3128", "http://b:3128", "http://c:3128"})

	got := []string{p.Next(), p.Next(), p.Next(), p.Next()}
	want := []string{"http://a:3128", "http://b:3128", "http://c:3128", "http://a:3128"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", got, want)
		}
	}
}

func TestPool_SkipsFailedProxy(t *testing.T) {
	p := NewPool([]string{"http://a:3128", "http://b:3128"})
	p.MarkFailed("http://a:3128")

	for i := 0; i < 3; i++ {
		if got := p.Next(); got != "http://b:3128" {
			t.Fatalf("Next() = %q, want the healthy proxy", got)
		}
	}

	p.MarkHealthy("http://a:3128")
	seen := map[string]bool{p.Next(): true, p.Next(): true}
	if !seen["http://a:3128"] {
		t.Error("recovered proxy never returned to rotation")
	}
}

func TestPool_AllFailedStillServes(t *testing.T) {
	p := NewPool([]string{"http://a:3128", "http://b:3128"})
	p.MarkFailed("http://a:3128")
	p.MarkFailed("http://b:3128")

	if got := p.Next(); got == "" {
		t.Error("Next() = empty with all proxies benched, want degraded rotation")
	}
}

func TestPool_Empty(t *testing.T) {
	p := NewPool(nil)
	if got := p.Next(); got != "" {
		t.Errorf("Next() = %q, want empty", got)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d", p.Len())
	}
}
