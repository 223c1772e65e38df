package rules

import "testing"

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	a1, b1 := CanonicalPair(7, 3)
	a2, b2 := CanonicalPair(3, 7)
	if a1 != a2 || b1 != b2 {
		t.Fatalf("pair key depends on argument order: (%d,%d) vs (%d,%d)", a1, b1, a2, b2)
	}
	if a1 != 3 || b1 != 7 {
		t.Fatalf("expected lower id first, got (%d,%d)", a1, b1)
	}
}

func TestNormalizeMessageContent(t *testing.T) {
	if _, ok := NormalizeMessageContent("   "); ok {
		t.Fatal("whitespace-only content should be rejected")
	}

	content, ok := NormalizeMessageContent("  hey there  ")
	if !ok || content != "hey there" {
		t.Fatalf("unexpected normalization result: %q ok=%v", content, ok)
	}

	long := make([]rune, MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, ok := NormalizeMessageContent(string(long)); ok {
		t.Fatal("oversized content should be rejected")
	}
}
