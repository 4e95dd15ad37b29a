package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

const doc = "---\ntitle: Demo\npreview: true\n---\n\n" +
	"## One\n\nSee [main](focus:main.go#2).\n\n" +
	"```go main.go focus=1\npackage main\nfunc main() {}\n```\n\n" +
	"```preview\nrun\n```\n\n---\n\n" +
	"## Two\n\nMore.\n\n" +
	"```preview\nagain\n```\n"

func TestBuild(t *testing.T) {
	d, err := walkthrough.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	snap, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Title != "Demo" || !snap.Preview {
		t.Errorf("unexpected header: %+v", snap)
	}
	if len(snap.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(snap.Steps))
	}

	first := snap.Steps[0]
	if first.Preview != "run" {
		t.Errorf("expected preview run, got %q", first.Preview)
	}
	if len(first.Links) != 1 || first.Links[0].Request.FileName != "main.go" {
		t.Errorf("unexpected links: %+v", first.Links)
	}
	f, ok := first.Focus["main.go"]
	if !ok || !f.Contains(1) || f.Contains(2) {
		t.Errorf("expected parsed focus on line 1, got %+v", first.Focus)
	}

	second := snap.Steps[1]
	if second.EditorStep.Active != "main.go" {
		t.Errorf("expected main.go carried into step 2, got %q", second.EditorStep.Active)
	}
	if len(second.Focus) != 0 {
		t.Errorf("carried files lose their focus, got %+v", second.Focus)
	}
}

func TestBuildConfigError(t *testing.T) {
	d, err := walkthrough.Parse([]byte(strings.Replace(doc, "```preview\nagain\n```\n", "", 1)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Build(d)
	if !errors.Is(err, walkthrough.ErrPreviewCountMismatch) {
		t.Fatalf("expected preview count mismatch, got %v", err)
	}
}

func TestWrite(t *testing.T) {
	d, err := walkthrough.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	snap, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"steps\": [") {
		t.Errorf("expected indented output, got:\n%s", buf.String())
	}

	var decoded struct {
		Title string `json:"title"`
		Steps []struct {
			Index      int `json:"index"`
			EditorStep struct {
				Active string `json:"active"`
			} `json:"editor_step"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Title != "Demo" || len(decoded.Steps) != 2 || decoded.Steps[1].Index != 1 {
		t.Errorf("unexpected decoded snapshot: %+v", decoded)
	}
	if decoded.Steps[0].EditorStep.Active != "main.go" {
		t.Errorf("expected active main.go, got %q", decoded.Steps[0].EditorStep.Active)
	}
}
