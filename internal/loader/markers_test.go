package loader

import (
	"slices"
	"testing"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		line  string
		ok    bool
		level int
		text  string
	}{
		{"# Title", true, 1, "Title"},
		{"## Routing", true, 2, "Routing"},
		{"   ### Pages", true, 3, "Pages"},
		{"### Pages ###", true, 3, "Pages"},
		{"### C#", true, 3, "C#"},
		{"###### Deep", true, 6, "Deep"},
		{"##", true, 2, ""},
		{"## #", true, 2, ""},
		{"####### Seven", false, 0, ""},
		{"#hashtag", false, 0, ""},
		{"    ## Indented code", false, 0, ""},
		{"plain text", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h, ok := parseHeading(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseHeading(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if h.level != tt.level || h.text != tt.text {
				t.Errorf("parseHeading(%q) = {%d %q}, want {%d %q}", tt.line, h.level, h.text, tt.level, tt.text)
			}
		})
	}
}

func TestFence(t *testing.T) {
	f, ok := parseFenceOpen("```jsx")
	if !ok || f.char != '`' || f.size != 3 || f.info != "jsx" {
		t.Fatalf("parseFenceOpen(```jsx) = %+v, %v", f, ok)
	}

	if f.closes("~~~") {
		t.Error("tilde fence should not close a backtick fence")
	}
	if f.closes("``") {
		t.Error("shorter fence should not close")
	}
	if f.closes("``` js") {
		t.Error("fence with info string should not close")
	}
	if !f.closes("````") {
		t.Error("longer fence should close")
	}

	if _, ok := parseFenceOpen("``` a`b"); ok {
		t.Error("backtick fence with backtick in info should not open")
	}
	if f, ok := parseFenceOpen("  ~~~~ sh"); !ok || f.char != '~' || f.size != 4 || f.info != "sh" {
		t.Errorf("parseFenceOpen(~~~~ sh) = %+v, %v", f, ok)
	}
}

func TestParseBoldLead(t *testing.T) {
	tests := []struct {
		line  string
		ok    bool
		title string
		rest  string
	}{
		{"**next/image**", true, "next/image", ""},
		{"**getStaticProps**: fetch at build time", true, "getStaticProps", "fetch at build time"},
		{"- **Link** - client-side navigation", true, "Link", "client-side navigation"},
		{"* **Script:** third-party scripts", true, "Script", "third-party scripts"},
		{"**Head** — document head", true, "Head", "document head"},
		{"Use **bold** here", false, "", ""},
		{"***", false, "", ""},
		{"**:**", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			b, ok := parseBoldLead(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseBoldLead(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && (b.title != tt.title || b.rest != tt.rest) {
				t.Errorf("parseBoldLead(%q) = {%q %q}, want {%q %q}", tt.line, b.title, b.rest, tt.title, tt.rest)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line  string
		kind  LineKind
		level int
	}{
		{"plain text", TextLine, 0},
		{"#hashtag", TextLine, 0},
		{"# starts a comment", HeadingLine, 1},
		{"#### detail", HeadingLine, 4},
		{"##", EmptyHeadingLine, 2},
		{"```js", FenceLine, 0},
		{"~~~", FenceLine, 0},
		{"**Note**: text", BoldLeadLine, 0},
		{"- **Link** - navigation", BoldLeadLine, 0},
	}
	for _, tt := range tests {
		kind, level := Classify(tt.line)
		if kind != tt.kind || level != tt.level {
			t.Errorf("Classify(%q) = (%d, %d), want (%d, %d)", tt.line, kind, level, tt.kind, tt.level)
		}
	}
}

func TestTrimBlankLines(t *testing.T) {
	got := trimBlankLines([]string{"", "  ", "a", "", "b", "\t", ""})
	if want := []string{"a", "", "b"}; !slices.Equal(got, want) {
		t.Errorf("trimBlankLines() = %q, want %q", got, want)
	}
	if got := trimBlankLines([]string{"", " "}); len(got) != 0 {
		t.Errorf("trimBlankLines(all blank) = %q, want empty", got)
	}
}

func TestJoinBlocks(t *testing.T) {
	if got := joinBlocks("a", "", "b"); got != "a\n\nb" {
		t.Errorf("joinBlocks() = %q", got)
	}
	if got := joinBlocks("", ""); got != "" {
		t.Errorf("joinBlocks(empty) = %q", got)
	}
}
