package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name string `json:"name"`
}

type sampleList []sample

func (l sampleList) Table() Table {
	t := Table{Headers: []string{"NAME"}}
	for _, s := range l {
		t.Rows = append(t.Rows, []string{s.Name})
	}
	return t
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "a"}, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"name\":\"a\"}\n" {
		t.Fatalf("unexpected json output: %q", got)
	}
}

func TestWrite_TableRendersRows(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleList{{Name: "alpha"}, {Name: "beta"}}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "alpha", "beta"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output:\n%s", want, out)
		}
	}
}

func TestWrite_TableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "x"}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "x"`) {
		t.Fatalf("expected pretty json fallback; got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
