package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) New(ctx context.Context) error  { f.calls = append(f.calls, "new"); return nil }
func (f *fakeExec) Edit(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "edit")
	f.arg = arg
	return nil
}
func (f *fakeExec) Color(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "color")
	f.arg = strings.Join(args, " ")
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "delete")
	f.arg = arg
	return nil
}
func (f *fakeExec) Colors(ctx context.Context) error {
	f.calls = append(f.calls, "colors")
	return nil
}
func (f *fakeExec) Backup(ctx context.Context) error {
	f.calls = append(f.calls, "backup")
	return nil
}

func stubPrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(args ...any) (int, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			if s, ok := a.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	stubPrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"new",
		"login",
		"help",
		"new",
		"l",
		"edit 2",
		"color 1 amber",
		"delete 3",
		"colors",
		"backup",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}

	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	want := []string{"login", "new", "list", "edit", "color", "delete", "colors", "backup", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls: got %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	lines := stubPrintln(t)

	input := strings.NewReader("edit\ndelete\nlogin\nquit\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(*lines, "\n")
	for _, want := range []string{"Usage: edit <n>", "Usage: delete <n>", "Already signed in", "Bye!"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("output %q lacks %q", joined, want)
		}
	}
}

func TestRunREPL_EOFStops(t *testing.T) {
	stubPrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("register")))

	if len(exec.calls) != 1 || exec.calls[0] != "register" {
		t.Fatalf("calls: %v", exec.calls)
	}
}
