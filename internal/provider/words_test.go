package provider

import "testing"

func TestWordCollector_OrderPreserving(t *testing.T) {
	wc := newWordCollector(10)
	wc.add("alpha beta")
	wc.add("gamma")

	got := wc.result()
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWordCollector_NoTransformation(t *testing.T) {
	wc := newWordCollector(10)
	wc.add("Hello, World! Hello, World!")

	got := wc.result()
	// No case folding, punctuation stripping, or deduplication.
	want := []string{"Hello,", "World!", "Hello,", "World!"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWordCollector_Cap(t *testing.T) {
	wc := newWordCollector(2)
	if !wc.add("one") {
		t.Error("collector should accept a second item")
	}
	if wc.add("two") {
		t.Error("collector should be full after the cap")
	}
	if wc.add("three") {
		t.Error("items past the cap are rejected")
	}
	if got := len(wc.result()); got != 2 {
		t.Errorf("got %d words, want 2", got)
	}
}

func TestWordCollector_ZeroCap(t *testing.T) {
	wc := newWordCollector(0)
	if wc.add("anything") {
		t.Error("zero cap accepts nothing")
	}
	got := wc.result()
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil", got)
	}
}

func TestWordCollector_EmptyText(t *testing.T) {
	wc := newWordCollector(5)
	wc.add("")
	wc.add("   ")
	// Blank items still count against the cap but contribute no words.
	if wc.items != 2 {
		t.Errorf("items = %d, want 2", wc.items)
	}
	if len(wc.result()) != 0 {
		t.Errorf("words = %v, want none", wc.result())
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Hello <b>bold</b> &amp; plain</p>")
	want := "Hello  bold  & plain"
	if got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}
