package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"nztodo/internal/commands"
	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/seed"
	"nztodo/internal/service"
	"nztodo/internal/testutil"
	"nztodo/internal/validate"
	"nztodo/internal/web"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "nztodo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for lists command
func TestListsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	shopID, _ := svc.AddList("Shopping", "Bread", "Butter")
	workID, _ := svc.AddList("Work")

	cmd := &commands.ListsCmd{}
	cmd.SetQuery(service.AllLists)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := shopID + "  Shopping  (2/2 open)\n" + workID + "  Work  (0/0 open)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListsCommand_SkipLimitSearch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("alpha")
	betaID, _ := svc.AddList("beta")
	svc.AddList("gamma")
	svc.AddList("alphabet")

	cmd := &commands.ListsCmd{}
	cmd.SetQuery(service.Query{Skip: 1, Limit: 1})
	stdout, _, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != betaID+"  beta  (0/0 open)\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	cmd.SetQuery(service.Query{Limit: -1, Search: "alpha"})
	stdout, _, _ = runCommand(t, cmd, svc, nil, false)
	if strings.Count(stdout, "\n") != 2 || !strings.Contains(stdout, "alphabet") {
		t.Errorf("unexpected search output %q", stdout)
	}
}

func TestListsCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.ListsCmd{}
	cmd.SetQuery(service.AllLists)

	stdout, _, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no lists found\n" {
		t.Errorf("expected 'no lists found', got %q", stdout)
	}

	// Quiet mode should suppress "no lists found"
	stdout, _, _ = runCommand(t, cmd, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListsCommand_NegativeSkip(t *testing.T) {
	cmd := &commands.ListsCmd{}
	cmd.SetQuery(service.Query{Skip: -2, Limit: -1})

	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid skip: -2\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListsCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = errors.New("connection refused")

	cmd := &commands.ListsCmd{}
	cmd.SetQuery(service.AllLists)
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	listID, taskIDs := svc.AddList("Shopping", "Bread", "Butter")
	if _, err := svc.CompleteTask(context.Background(), listID, taskIDs[0], true); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.ShowCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"shopping"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "------------\nShopping  " + listID + "\n------------\n" +
		"       1  [x] Bread  " + taskIDs[0] + "\n" +
		"       2  [ ] Butter  " + taskIDs[1] + "\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestShowCommand_OpenKeepsNumbers(t *testing.T) {
	svc := testutil.NewFakeService()
	listID, taskIDs := svc.AddList("Shopping", "Bread", "Butter")
	if _, err := svc.CompleteTask(context.Background(), listID, taskIDs[0], true); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.ShowCmd{}
	cmd.SetOpen(true)
	stdout, _, _ := runCommand(t, cmd, svc, []string{listID}, false)

	if strings.Contains(stdout, "Bread") {
		t.Errorf("completed task should be hidden: %q", stdout)
	}
	if !strings.Contains(stdout, "       2  [ ] Butter") {
		t.Errorf("open task should keep its number: %q", stdout)
	}
}

func TestShowCommand_ListNotFound(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ShowCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"NonExistent"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: list not found: NonExistent\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestShowCommand_NoArgs(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ShowCmd{}, testutil.NewFakeService(), nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: list required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowAndLists_Golden(t *testing.T) {
	svc := testutil.NewFakeService()
	ctx := context.Background()
	listID, err := svc.CreateList(ctx, "Groceries", "weekly shop")
	if err != nil {
		t.Fatal(err)
	}
	var taskIDs []string
	for _, name := range []string{"milk", "eggs", "bread"} {
		id, err := svc.CreateTask(ctx, listID, name)
		if err != nil {
			t.Fatal(err)
		}
		taskIDs = append(taskIDs, id)
	}
	if _, err := svc.CompleteTask(ctx, listID, taskIDs[0], true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateList(ctx, "", ""); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"groceries"}, false)
	if code != exitcode.Success {
		t.Fatalf("show: expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.Golden(t, "show", stdout)

	lists := &commands.ListsCmd{}
	lists.SetQuery(service.AllLists)
	stdout, _, code = runCommand(t, lists, svc, nil, false)
	if code != exitcode.Success {
		t.Fatalf("lists: expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.Golden(t, "lists", stdout)
}

// Tests for createlist command
func TestCreateListCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.CreateListCmd{}
	cmd.SetDescription("weekly run")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Big", "Shop"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	id := strings.TrimSpace(stdout)
	list, err := svc.GetList(context.Background(), id)
	if err != nil {
		t.Fatalf("created list not found: %v", err)
	}
	if list.Name != "Big Shop" || list.Description != "weekly run" {
		t.Errorf("unexpected list %#v", list)
	}
}

func TestCreateListCommand_Duplicate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("Work")

	_, stderr, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"work"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: list already exists: work\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestCreateListCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.CreateListCmd{}, svc, []string{"Work"}, true)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
	if svc.Store.Len() != 1 {
		t.Errorf("expected 1 list, got %d", svc.Store.Len())
	}
}

func TestCreateListCommand_NoName(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.CreateListCmd{}, testutil.NewFakeService(), []string{"  "}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: list name required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	listID, _ := svc.AddList("Shopping")

	cmd := &commands.AddCmd{}
	cmd.SetList("Shopping")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "groceries"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}

	// Verify task was created
	task, err := svc.GetTask(context.Background(), listID, strings.TrimSpace(stdout))
	if err != nil {
		t.Fatalf("created task not found: %v", err)
	}
	if task.Name != "Buy groceries" || task.Completed {
		t.Errorf("unexpected task %#v", task)
	}
}

func TestAddCommand_NoName(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetList("Shopping")
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task name required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_NoList(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(), []string{"milk"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --list required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_ServerRejects(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("Shopping")
	svc.CreateTaskErr = validate.NewBadRequest("Unexpected key(s):", "colour")

	cmd := &commands.AddCmd{}
	cmd.SetList("Shopping")
	_, stderr, code := runCommand(t, cmd, svc, []string{"milk"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Unexpected key(s): colour.\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for task command
func TestTaskCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	_, taskIDs := svc.AddList("Shopping", "Bread", "Butter")

	stdout, stderr, code := runCommand(t, &commands.TaskCmd{}, svc, []string{"Shopping", "2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "id:     " + taskIDs[1] + "\nname:   Butter\nstatus: open\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestTaskCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("Shopping", "Bread")

	tests := []struct {
		args   []string
		stderr string
	}{
		{nil, "error: list required\n"},
		{[]string{"Shopping"}, "error: task reference required\n"},
		{[]string{"Shopping", "1", "2"}, "error: unexpected argument: 2\n"},
		{[]string{"Shopping", "x"}, "error: invalid task reference: x\n"},
		{[]string{"Shopping", "5"}, "error: task number out of range: 5\n"},
		{[]string{"Garden", "1"}, "error: list not found: Garden\n"},
	}
	for _, tt := range tests {
		_, stderr, code := runCommand(t, &commands.TaskCmd{}, svc, tt.args, false)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.stderr {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.stderr, stderr)
		}
	}
}

// Tests for done command
func TestDoneCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	listID, taskIDs := svc.AddList("Shopping", "Bread")
	ctx := context.Background()

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"Shopping", taskIDs[0]}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	task, _ := svc.GetTask(ctx, listID, taskIDs[0])
	if !task.Completed {
		t.Error("task should be completed")
	}

	undo := &commands.DoneCmd{}
	undo.SetUndo(true)
	stdout, _, code = runCommand(t, undo, svc, []string{listID, "1"}, true)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
	task, _ = svc.GetTask(ctx, listID, taskIDs[0])
	if task.Completed {
		t.Error("task should be open again")
	}
}

func TestDoneCommand_UnknownTaskID(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("Shopping", "Bread")

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc,
		[]string{"Shopping", "9b2c6f0e-4a1d-4c3e-8f5a-1e2d3c4b5a69"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for serve command
type fakeImporter struct {
	file     *seed.File
	err      error
	checkErr error
}

func (f *fakeImporter) Check(ctx context.Context) error {
	return f.checkErr
}

func (f *fakeImporter) Import(ctx context.Context) (*seed.File, error) {
	return f.file, f.err
}

func serveConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Addr = "127.0.0.1:0"
	return cfg
}

func parseFlags(t *testing.T, cmd commands.Command, args ...string) {
	t.Helper()
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// runServe starts serve, lets check inspect the server, then stops it.
func runServe(t *testing.T, cmd *commands.ServeCmd, cfg *config.Config, check func(*web.Server)) (string, int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd.SetReady(func(srv *web.Server) {
		if check != nil {
			check(srv)
		}
		cancel()
	})

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(ctx, cfg, nil, nil, &outBuf, &errBuf)
	return errBuf.String(), code
}

func getLists(t *testing.T, srv *web.Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /lists: expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestServeCommand_Seed(t *testing.T) {
	cfg := serveConfig(t)
	seedPath := filepath.Join(cfg.Dir, "seed.json")
	writeFile(t, seedPath, `{"lists":[{"name":"groceries","tasks":[{"name":"milk"}]}]}`)
	cfg.SeedFile = seedPath

	var body string
	stderr, code := runServe(t, &commands.ServeCmd{}, cfg, func(srv *web.Server) {
		body = getLists(t, srv)
	})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(body, `"name":"groceries"`) || !strings.Contains(body, `"name":"milk"`) {
		t.Errorf("seeded list missing from %s", body)
	}
	if !strings.Contains(stderr, "seeded") || !strings.Contains(stderr, "plain HTTP") {
		t.Errorf("expected seed and TLS log lines, got %q", stderr)
	}
}

func TestServeCommand_BadSeed(t *testing.T) {
	cfg := serveConfig(t)
	seedPath := filepath.Join(cfg.Dir, "seed.json")
	writeFile(t, seedPath, `{"lists":[{"tasks":[]}]}`)
	cfg.SeedFile = seedPath

	stderr, code := runServe(t, &commands.ServeCmd{}, cfg, func(*web.Server) {
		t.Error("server should not start with an invalid seed file")
	})

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.Contains(stderr, "lists[0]") {
		t.Errorf("expected the violation path in %q", stderr)
	}
}

func TestServeCommand_ImportGoogle(t *testing.T) {
	cfg := serveConfig(t)
	writeFile(t, cfg.OAuthClientPath(), `{"installed":{"client_id":"test","client_secret":"test"}}`)
	writeFile(t, cfg.TokenPath(), `{"access_token":"a","refresh_token":"r"}`)

	orig := commands.ImporterFactory
	t.Cleanup(func() { commands.ImporterFactory = orig })
	commands.ImporterFactory = func(ctx context.Context, cfg *config.Config) (commands.Importer, error) {
		return &fakeImporter{file: &seed.File{Lists: []seed.List{
			{Name: "My Tasks", Tasks: []seed.Task{{Name: "call mum", Completed: true}}},
		}}}, nil
	}

	cmd := &commands.ServeCmd{}
	parseFlags(t, cmd, "--import-google")

	var body string
	stderr, code := runServe(t, cmd, cfg, func(srv *web.Server) {
		body = getLists(t, srv)
	})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(body, `"name":"My Tasks"`) || !strings.Contains(body, `"completed":true`) {
		t.Errorf("imported list missing from %s", body)
	}
}

func TestServeCommand_ImportGoogleNotLoggedIn(t *testing.T) {
	cfg := serveConfig(t)
	writeFile(t, cfg.OAuthClientPath(), `{"installed":{"client_id":"test","client_secret":"test"}}`)

	cmd := &commands.ServeCmd{}
	parseFlags(t, cmd, "--import-google")
	stderr, code := runServe(t, cmd, cfg, nil)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: not logged in (run: nztodo login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestServeCommand_ImportFails(t *testing.T) {
	cfg := serveConfig(t)
	writeFile(t, cfg.OAuthClientPath(), `{"installed":{"client_id":"test","client_secret":"test"}}`)
	writeFile(t, cfg.TokenPath(), `{"access_token":"a","refresh_token":"r"}`)

	orig := commands.ImporterFactory
	t.Cleanup(func() { commands.ImporterFactory = orig })
	commands.ImporterFactory = func(ctx context.Context, cfg *config.Config) (commands.Importer, error) {
		return &fakeImporter{err: errors.New("quota exceeded")}, nil
	}

	cmd := &commands.ServeCmd{}
	parseFlags(t, cmd, "--import-google")
	stderr, code := runServe(t, cmd, cfg, nil)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: quota exceeded\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestServeCommand_UnexpectedArgument(t *testing.T) {
	var errBuf bytes.Buffer
	code := (&commands.ServeCmd{}).Run(context.Background(), serveConfig(t), nil, []string{"now"}, &bytes.Buffer{}, &errBuf)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}
