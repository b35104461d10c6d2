package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/fakeapi"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

type cliEnv struct {
	t       *testing.T
	baseURL string
	backend *fakeapi.Server
}

// newCLIEnv starts a development backend and isolates the config dir.
func newCLIEnv(t *testing.T, opts ...fakeapi.Option) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TASKDASH_CONFIG_DIR", dir)
	t.Setenv("TASKDASH_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("TASKDASH_API_URL", "")

	backend, err := fakeapi.New(append([]fakeapi.Option{fakeapi.WithPasswordCost(bcrypt.MinCost)}, opts...)...)
	if err != nil {
		t.Fatalf("fakeapi.New: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return &cliEnv{t: t, baseURL: srv.URL, backend: backend}
}

func (e *cliEnv) run(args ...string) ([]byte, []byte, error) {
	e.t.Helper()
	return runCLI(e.t, append([]string{"--base-url", e.baseURL}, args...))
}

func (e *cliEnv) mustRun(args ...string) map[string]any {
	e.t.Helper()
	stdout, stderr, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("command failed: taskdash %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		e.t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		e.t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func (e *cliEnv) login() {
	e.t.Helper()
	e.mustRun("login", "--email", fakeapi.SeedAdminEmail, "--password", fakeapi.SeedAdminPassword)
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object; got %#v", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	xs, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("expected data list; got %#v", env["data"])
	}
	return xs
}

func TestLoginWhoamiLogout(t *testing.T) {
	e := newCLIEnv(t)

	if _, _, err := e.run("whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn before login; got %v", err)
	}

	_, stderr, err := e.run("login", "--email", fakeapi.SeedAdminEmail, "--password", "nope")
	if err == nil || !strings.Contains(string(stderr), "Invalid credentials") {
		t.Fatalf("expected login failure message; err=%v stderr=%s", err, stderr)
	}

	e.login()
	who := dataMap(t, e.mustRun("whoami"))
	if who["email"] != fakeapi.SeedAdminEmail || who["id"] != float64(1) {
		t.Fatalf("expected admin identity; got %#v", who)
	}

	e.mustRun("logout")
	if _, _, err := e.run("whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn after logout; got %v", err)
	}
}

func TestLogin_ReadsPasswordFromStdin(t *testing.T) {
	e := newCLIEnv(t)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(fakeapi.SeedAdminPassword + "\n"))
	cmd.SetArgs([]string{"--base-url", e.baseURL, "login", "--email", fakeapi.SeedAdminEmail})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), fakeapi.SeedAdminEmail) {
		t.Fatalf("expected user in output; got %s", out.String())
	}
}

func TestProjectAndTaskLifecycle(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	proj := e.mustRun("projects", "create", "--title", "CLI Project", "--description", "via cli")
	pid, _ := dataMap(t, proj)["id"].(float64)
	if pid == 0 {
		t.Fatalf("expected project id; got %#v", proj)
	}
	if msg := proj["meta"].(map[string]any)["message"]; msg != "Project created successfully" {
		t.Fatalf("expected create message; got %v", msg)
	}
	projectArg := jsonNumber(pid)

	created := dataMap(t, e.mustRun("tasks", "create", "--project", projectArg, "--summary", "Write docs"))
	if created["status"] != "To Do" || created["priority"] != "Medium" || created["type"] != "Task" {
		t.Fatalf("expected create defaults; got %#v", created)
	}
	taskArg := jsonNumber(created["id"].(float64))
	e.mustRun("tasks", "create", "--project", projectArg, "--summary", "Fix bug", "--priority", "highest", "--status", "blocked")

	list := e.mustRun("tasks", "list", "--project", projectArg, "--status", "blocked")
	if xs := dataList(t, list); len(xs) != 1 || xs[0].(map[string]any)["summary"] != "Fix bug" {
		t.Fatalf("expected only the blocked task; got %#v", xs)
	}
	none := e.mustRun("tasks", "list", "--project", projectArg, "--search", "zzz")
	if meta := none["meta"].(map[string]any); meta["empty"] != "No tasks match your filters" {
		t.Fatalf("expected no-match empty state; got %#v", meta)
	}

	updated := dataMap(t, e.mustRun("tasks", "update", taskArg, "--status", "done"))
	if updated["status"] != "Done" || updated["summary"] != "Write docs" {
		t.Fatalf("expected status-only update; got %#v", updated)
	}

	stats := dataMap(t, e.mustRun("tasks", "stats", "--project", projectArg))
	if stats["completed"] != float64(1) || stats["blocked"] != float64(1) || stats["todo"] != float64(0) {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	if _, _, err := e.run("tasks", "delete", taskArg); err == nil {
		t.Fatalf("expected delete without --yes to be refused")
	}
	if xs := dataList(t, e.mustRun("tasks", "list", "--project", projectArg)); len(xs) != 2 {
		t.Fatalf("expected task kept after refused delete; got %d", len(xs))
	}
	del := e.mustRun("tasks", "delete", taskArg, "--yes")
	if msg := del["meta"].(map[string]any)["message"]; msg != "Task deleted" {
		t.Fatalf("expected delete message; got %v", msg)
	}
	_, stderr, err := e.run("tasks", "update", taskArg, "--summary", "gone")
	if err == nil || !strings.Contains(string(stderr), "not found") {
		t.Fatalf("expected not found for deleted task; err=%v stderr=%s", err, stderr)
	}

	e.mustRun("projects", "delete", projectArg, "--yes")
	if xs := dataList(t, e.mustRun("tasks", "list")); len(xs) != 0 {
		t.Fatalf("expected project delete to cascade; got %#v", xs)
	}
}

func TestMembersAndViewerRestrictions(t *testing.T) {
	e := newCLIEnv(t)
	if _, err := e.backend.AddUser("Vera", "vera@example.com", "secret"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	e.login()

	proj := dataMap(t, e.mustRun("projects", "create", "--title", "Shared"))
	projectArg := jsonNumber(proj["id"].(float64))

	added := e.mustRun("members", "add", projectArg, "--email", "vera@example.com", "--role", "viewer")
	if msg := added["meta"].(map[string]any)["message"]; msg != "User added successfully!" {
		t.Fatalf("expected inline success message; got %v", msg)
	}
	_, stderr, err := e.run("members", "add", projectArg, "--email", "vera@example.com")
	if err == nil || !strings.Contains(string(stderr), "already a member") {
		t.Fatalf("expected duplicate rejection from backend; err=%v stderr=%s", err, stderr)
	}
	if xs := dataList(t, e.mustRun("members", "list", projectArg)); len(xs) != 2 {
		t.Fatalf("expected two members; got %#v", xs)
	}
	e.mustRun("tasks", "create", "--project", projectArg, "--summary", "Seeded by admin")

	e.mustRun("logout")
	e.mustRun("login", "--email", "vera@example.com", "--password", "secret")

	_, stderr, err = e.run("tasks", "create", "--project", projectArg, "--summary", "nope")
	if err == nil || !strings.Contains(string(stderr), "read-only") {
		t.Fatalf("expected read-only refusal for viewer; err=%v stderr=%s", err, stderr)
	}
	if _, _, err := e.run("members", "list", projectArg); err == nil {
		t.Fatalf("expected member management to be refused for viewer")
	}
	if xs := dataList(t, e.mustRun("tasks", "list", "--project", projectArg)); len(xs) != 1 {
		t.Fatalf("expected viewer to read tasks; got %#v", xs)
	}
}

func TestDashboardAndTableFormat(t *testing.T) {
	e := newCLIEnv(t, fakeapi.WithDemoData())
	e.login()

	dash := dataMap(t, e.mustRun("dashboard"))
	stats := dash["stats"].(map[string]any)
	for _, k := range []string{"todo", "inProgress", "blocked", "completed"} {
		if stats[k] != float64(1) {
			t.Fatalf("expected one %s task in demo data; got %#v", k, stats)
		}
	}

	stdout, stderr, err := e.run("--format", "table", "tasks", "list")
	if err != nil {
		t.Fatalf("table list: %v\n%s", err, stderr)
	}
	for _, want := range []string{"SUMMARY", "Read the README", "Blocked"} {
		if !strings.Contains(string(stdout), want) {
			t.Fatalf("expected %q in table output:\n%s", want, stdout)
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	e := newCLIEnv(t)

	e.mustRun("config", "init")
	if _, _, err := e.run("config", "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	shown := dataMap(t, e.mustRun("config", "show"))
	api := shown["api"].(map[string]any)
	if api["baseUrl"] != e.baseURL {
		t.Fatalf("expected flag override in effective config; got %#v", api)
	}

	if _, _, err := runCLI(t, []string{"--format", "edn", "config", "show"}); err == nil {
		t.Fatalf("expected invalid format to fail validation")
	}
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
