package linkfilter

import "testing"

func TestDisabledByDefault(t *testing.T) {
	module := New(false)
	if flagged, _ := module.Check("https://example.com"); flagged {
		t.Fatal("disabled filter must not flag")
	}
}

func TestFlagsURLWhenEnabled(t *testing.T) {
	module := New(true)
	flagged, url := module.Check("şuna bak https://Example.com/x?utm_source=y")
	if !flagged {
		t.Fatal("expected link violation")
	}
	if url != "https://example.com/x" {
		t.Fatalf("unexpected normalized url: %q", url)
	}
	if flagged, _ := module.Check("link yok burada"); flagged {
		t.Fatal("plain text must not flag")
	}
}
