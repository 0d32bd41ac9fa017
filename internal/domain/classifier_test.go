package domain

import "testing"

func TestClassifyBoundary(t *testing.T) {
	t.Parallel()

	c := NewClassifier(60)

	at := c.Classify(60)
	if at.Category != CategoryPositive {
		t.Fatalf("score at threshold should be positive, got %s", at.Category)
	}

	above := c.Classify(61)
	if above.Category != CategoryNegative {
		t.Fatalf("score above threshold should be negative, got %s", above.Category)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	c := NewClassifier(60)
	for _, score := range []int{1, 20, 59, 60, 61, 85, 100} {
		first := c.Classify(score)
		for i := 0; i < 5; i++ {
			if got := c.Classify(score); got != first {
				t.Fatalf("classify(%d) not deterministic: %+v vs %+v", score, got, first)
			}
		}
	}
}

func TestClassifyResponses(t *testing.T) {
	t.Parallel()

	c := NewClassifier(60)

	positive := c.Classify(20)
	if positive.Response != positiveResponse {
		t.Fatalf("unexpected positive response: %q", positive.Response)
	}

	negative := c.Classify(85)
	if negative.Response != negativeResponse {
		t.Fatalf("unexpected negative response: %q", negative.Response)
	}
}

func TestNewClassifierDefaultThreshold(t *testing.T) {
	t.Parallel()

	c := NewClassifier(0)
	if c.Threshold() != DefaultThreshold {
		t.Fatalf("expected default threshold %d, got %d", DefaultThreshold, c.Threshold())
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	t.Parallel()

	c := NewClassifier(70)
	if got := c.Classify(70).Category; got != CategoryPositive {
		t.Fatalf("score 70 with threshold 70 should be positive, got %s", got)
	}
	if got := c.Classify(71).Category; got != CategoryNegative {
		t.Fatalf("score 71 with threshold 70 should be negative, got %s", got)
	}
}
