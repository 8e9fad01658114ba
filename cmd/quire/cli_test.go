package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/storage"
)

// testConfig returns a default config for testing with export paths unrestricted.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	cfg.DebounceMs = 10
	return cfg
}

func testApp(backend storage.Backend) *cli.App {
	return newCLIApp(backend, testConfig(), slog.New(slog.DiscardHandler))
}

// runCLI runs args against app with stdin (when non-empty) piped in and
// returns what the command wrote to stdout.
func runCLI(t *testing.T, app *cli.App, stdin string, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	if stdin != "" {
		oldStdin := os.Stdin
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			t.Fatalf("pipe: %v", err)
		}
		os.Stdin = stdinR
		defer func() {
			os.Stdin = oldStdin
			stdinR.Close()
		}()
		go func() {
			_, _ = stdinW.WriteString(stdin)
			stdinW.Close()
		}()
	}

	outCh := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(r)
		outCh <- string(data)
	}()

	runErr := app.Run(append([]string{"quire"}, args...))
	w.Close()
	return <-outCh, runErr
}

func decodeOutput(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
}

func TestCLIDraftLifecycle(t *testing.T) {
	app := testApp(storage.NewMemory())

	out, err := runCLI(t, app, "Some *emphasis* here", "new", "--title=Issue 12", "--markdown")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var created struct {
		ID      string `json:"id"`
		Summary struct {
			WordCount int `json:"wordCount"`
		} `json:"summary"`
	}
	decodeOutput(t, out, &created)
	if created.ID == "" {
		t.Fatal("expected an id")
	}
	if created.Summary.WordCount != 3 {
		t.Errorf("wordCount = %d, want 3", created.Summary.WordCount)
	}

	out, err = runCLI(t, app, "", "show", created.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var shown struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	decodeOutput(t, out, &shown)
	if shown.Title != "Issue 12" {
		t.Errorf("title = %q", shown.Title)
	}
	if !strings.Contains(shown.Content, "<em>emphasis</em>") {
		t.Errorf("content = %q, want converted markdown", shown.Content)
	}

	if _, err := runCLI(t, app, "", "save", "--title=Issue 13", created.ID); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err = runCLI(t, app, "", "source", "add", "--url=https://www.example.org/post", created.ID)
	if err != nil {
		t.Fatalf("source add: %v", err)
	}
	var added struct {
		Source struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"source"`
		SourceCount int `json:"source_count"`
	}
	decodeOutput(t, out, &added)
	if added.Source.Title != "example.org" || added.SourceCount != 1 {
		t.Errorf("added = %+v", added)
	}

	if _, err := runCLI(t, app, "pasted notes", "source", "add", "--type=text", created.ID); err != nil {
		t.Fatalf("source add text: %v", err)
	}
	if _, err := runCLI(t, app, "", "source", "remove", created.ID, added.Source.ID); err != nil {
		t.Fatalf("source remove: %v", err)
	}

	out, err = runCLI(t, app, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Items []struct {
			Title       string `json:"title"`
			SourceCount int    `json:"sourceCount"`
		} `json:"items"`
	}
	decodeOutput(t, out, &list)
	if len(list.Items) != 1 || list.Items[0].Title != "Issue 13" || list.Items[0].SourceCount != 1 {
		t.Errorf("list = %+v", list.Items)
	}

	if _, err := runCLI(t, app, "", "delete", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = runCLI(t, app, "", "show", created.ID)
	if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("show after delete: err = %v, want NOT_FOUND", err)
	}
}

func TestCLIInsert(t *testing.T) {
	app := testApp(storage.NewMemory())

	out, _ := runCLI(t, app, "", "new")
	var created struct {
		ID string `json:"id"`
	}
	decodeOutput(t, out, &created)

	out, err := runCLI(t, app, "<blockquote>Quoted</blockquote><script>x()</script>", "insert", created.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	var inserted struct {
		Inserted string `json:"inserted"`
	}
	decodeOutput(t, out, &inserted)
	if strings.Contains(inserted.Inserted, "script") {
		t.Errorf("inserted = %q, want script stripped", inserted.Inserted)
	}

	_, err = runCLI(t, app, "", "insert", created.ID)
	if err == nil {
		t.Error("expected error without stdin")
	}
}

func TestCLIExportImport(t *testing.T) {
	app := testApp(storage.NewMemory())

	out, _ := runCLI(t, app, "<p>Roundtrip body</p>", "new", "--title=Roundtrip")
	var created struct {
		ID string `json:"id"`
	}
	decodeOutput(t, out, &created)

	path := filepath.Join(t.TempDir(), "roundtrip.md")
	if _, err := runCLI(t, app, "", "export", "--path="+path, created.ID); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Errorf("export missing front matter: %q", data)
	}

	out, err = runCLI(t, app, "", "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var imported struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decodeOutput(t, out, &imported)
	if imported.ID == created.ID || imported.Title != "Roundtrip" {
		t.Errorf("imported = %+v", imported)
	}
}

type activeView struct {
	Origin string `json:"origin"`
	Demo   bool   `json:"demo"`
	Draft  struct {
		Title   string            `json:"title"`
		Sources []json.RawMessage `json:"sources"`
	} `json:"draft"`
	Messages []json.RawMessage `json:"messages"`
}

func TestCLIActive(t *testing.T) {
	backend := storage.NewMemory()

	// First run: the demo is shown and the visit recorded.
	out, err := runCLI(t, testApp(backend), "", "active", "show")
	if err != nil {
		t.Fatalf("active show: %v", err)
	}
	var view activeView
	decodeOutput(t, out, &view)
	if view.Origin != "demo" || !view.Demo {
		t.Fatalf("first show = %+v, want demo", view)
	}
	if len(view.Messages) == 0 {
		t.Error("expected demo chat messages")
	}

	// An edit is flushed before the command returns.
	if _, err := runCLI(t, testApp(backend), "", "active", "title", "My", "issue"); err != nil {
		t.Fatalf("active title: %v", err)
	}
	out, _ = runCLI(t, testApp(backend), "", "active", "show")
	view = activeView{}
	decodeOutput(t, out, &view)
	if view.Origin != "persisted" || view.Draft.Title != "My issue" {
		t.Errorf("after title = %+v, want persisted 'My issue'", view)
	}

	// Dismissing erases the draft; later runs start empty.
	if _, err := runCLI(t, testApp(backend), "", "active", "dismiss"); err != nil {
		t.Fatalf("active dismiss: %v", err)
	}
	out, _ = runCLI(t, testApp(backend), "", "active", "show")
	view = activeView{}
	decodeOutput(t, out, &view)
	if view.Origin != "empty" || view.Demo || view.Draft.Title != "" {
		t.Errorf("after dismiss = %+v, want empty", view)
	}

	// The demo can be requested explicitly.
	out, _ = runCLI(t, testApp(backend), "", "active", "show", "--demo")
	view = activeView{}
	decodeOutput(t, out, &view)
	if view.Origin != "demo" {
		t.Errorf("show --demo origin = %q, want demo", view.Origin)
	}
}

func TestCLIActiveSources(t *testing.T) {
	backend := storage.NewMemory()
	app := testApp(backend)

	if _, err := runCLI(t, app, "", "active", "dismiss"); err != nil {
		t.Fatalf("active dismiss: %v", err)
	}
	out, err := runCLI(t, testApp(backend), "", "active", "add-source", "--url=https://example.com")
	if err != nil {
		t.Fatalf("add-source: %v", err)
	}
	var view activeView
	decodeOutput(t, out, &view)
	if len(view.Draft.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(view.Draft.Sources))
	}
	var src struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(view.Draft.Sources[0], &src); err != nil {
		t.Fatal(err)
	}

	out, err = runCLI(t, testApp(backend), "", "active", "remove-source", src.ID)
	if err != nil {
		t.Fatalf("remove-source: %v", err)
	}
	view = activeView{}
	decodeOutput(t, out, &view)
	if len(view.Draft.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(view.Draft.Sources))
	}

	if _, err := runCLI(t, testApp(backend), "", "active", "add-source", "--type=video"); err == nil {
		t.Error("expected error for unknown source type")
	}
}

func TestCLIHelpWithoutStorage(t *testing.T) {
	app := newCLIApp(nil, config.DefaultConfig(), slog.Default())
	out, err := runCLI(t, app, "", "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"new", "source", "active", "serve"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output missing %q", name)
		}
	}
}
