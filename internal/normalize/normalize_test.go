package normalize

import "testing"

func TestTextStripsMarkup(t *testing.T) {
	t.Parallel()

	raw := `<html><body><script>alert("x");</script><style>p { color: red; }</style><p>Hello <b>world</b></p></body></html>`

	got := Text(raw)
	if got != "Hello world" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextDecodesEntities(t *testing.T) {
	t.Parallel()

	got := Text("5 &gt; 3 &amp; 2 &lt; 4")
	if got != "5 > 3 & 2 < 4" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := Text("line one\r\nline two\tline   three  ")
	if got != "line one line two line three" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextPlainInputUnchanged(t *testing.T) {
	t.Parallel()

	got := Text("Great service, thank you!")
	if got != "Great service, thank you!" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Text(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := Text("   \r\n\t "); got != "" {
		t.Fatalf("expected empty output for whitespace, got %q", got)
	}
}

func TestTextMarkupOnlyInput(t *testing.T) {
	t.Parallel()

	if got := Text("<script>var a = 1;</script>"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
