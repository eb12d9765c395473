package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/newday/pkg/selector"
	"tableflip.dev/newday/pkg/task"
)

// run executes one command line against the workspace configured by setup and
// returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	prev := color.Output
	color.Output = &buf
	defer func() { color.Output = prev }()

	cmd := New()
	cmd.SetArgs(args)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("newday %s: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	conf := "path: " + filepath.Join(dir, "db") + "\nuser: tester\n"
	if err := os.WriteFile(filepath.Join(dir, ".newday.yaml"), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEWDAY_CONFIG_PATH", dir)
}

func TestCommandTree(t *testing.T) {
	want := []string{"add", "apikey", "complete", "days", "edit", "move", "new-day", "report", "rm", "serve", "show", "ui", "version"}
	cmd := New()
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == cmd {
			t.Errorf("missing command %q", name)
		}
	}
	if sub, _, err := cmd.Find([]string{"rollover"}); err != nil || sub.Name() != "new-day" {
		t.Errorf("rollover should alias new-day")
	}
}

func TestAddShowCompleteRemove(t *testing.T) {
	setup(t)

	run(t, "new-day", "-o", "json")

	var added task.Task
	if err := json.Unmarshal([]byte(run(t, "add", "--type", "most", "ship", "the", "release", "-o", "json")), &added); err != nil {
		t.Fatalf("decode add output: %v", err)
	}
	if added.Text != "ship the release" || added.Type != task.Most {
		t.Fatalf("added = %+v", added)
	}

	var view selector.DayView
	if err := json.Unmarshal([]byte(run(t, "show", "-o", "json")), &view); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	most := view.Section(task.Most)
	if len(most) != 1 || most[0].ID != added.ID {
		t.Fatalf("most = %+v", most)
	}

	run(t, "complete", added.ID[:10])
	if err := json.Unmarshal([]byte(run(t, "show", "-o", "json")), &view); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if most := view.Section(task.Most); len(most) != 1 || !most[0].Complete {
		t.Fatalf("task not completed: %+v", most)
	}

	if out := run(t, "rm", added.ID); !strings.Contains(out, "removed") {
		t.Fatalf("rm output = %q", out)
	}
	if err := json.Unmarshal([]byte(run(t, "show", "-o", "json")), &view); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if most := view.Section(task.Most); len(most) != 0 {
		t.Fatalf("task still listed: %+v", most)
	}
}

func TestJSONErrors(t *testing.T) {
	setup(t)

	out := run(t, "show", "-o", "json")
	var body map[string]string
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode error output %q: %v", out, err)
	}
	if !strings.Contains(body["error"], "no days yet") {
		t.Fatalf("error = %q", body["error"])
	}
}
