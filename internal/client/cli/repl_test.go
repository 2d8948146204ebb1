package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}

func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}

func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func (f *fakeExec) Passwd(context.Context) error {
	f.calls = append(f.calls, "passwd")
	return nil
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) List(_ context.Context, args []string) error   { return f.record("list", args) }
func (f *fakeExec) Add(_ context.Context, args []string) error    { return f.record("add", args) }
func (f *fakeExec) Update(_ context.Context, args []string) error { return f.record("update", args) }
func (f *fakeExec) Delete(_ context.Context, args []string) error { return f.record("delete", args) }
func (f *fakeExec) QR(_ context.Context, args []string) error     { return f.record("qr", args) }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	printed := capturePrintln(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"list",
		"login",
		"help",
		"l",
		"add https://example.com 7",
		"",
		"update s/1",
		"delete s/1",
		"qr s/1",
		"passwd",
		"logout",
		"foobar",
		"exit",
		"register",
	}, "\n")))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, input)

	want := []string{"login", "list", "add", "update", "delete", "qr", "passwd", "logout"}
	require.Equal(t, want, exec.calls, "commands after exit are not run")
	assert.Equal(t, []string{"https://example.com", "7"}, exec.args[1])
	assert.Equal(t, []string{"s/1"}, exec.args[2])

	joined := strings.Join(*printed, "\n")
	assert.Contains(t, joined, "Available commands: register, login, exit")
	assert.Contains(t, joined, "Available commands: (l)ist, add")
	assert.Contains(t, joined, "Please log in first.")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("register")))
	assert.Equal(t, []string{"register"}, exec.calls, "a last line without newline still runs")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrintln(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("register\n")))
	assert.Empty(t, exec.calls)
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	printed := capturePrintln(t)
	runREPL(context.Background(), &fakeExec{}, func() string { return " (alice)" }, bufio.NewReader(strings.NewReader("exit\n")))
	require.NotEmpty(t, *printed)
	assert.Equal(t, "gl (alice)> ", (*printed)[0])
}
