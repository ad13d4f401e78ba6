package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/UniQw/taskmgr"
)

const banner = "\033[1;34m" +
	"==================================\n" +
	"       Welcome to Task Manager    \n" +
	"==================================\n" +
	"\n\033[0m"

const menuText = `Menu:
1. Set deadlock timeout
2. Add task
3. Show Shared Memory Contents
4. Clear Shared Memory
5. Display Task Manager Status
6. Exit
Enter your choice: `

// errExit ends the menu loop without an error.
var errExit = errors.New("exit")

// menu reads whitespace separated tokens from in, like a terminal prompt.
type menu struct {
	in  *bufio.Scanner
	out io.Writer
	d   *taskmgr.Dispatcher
}

// runMenu drives the interactive loop until option 6, end of input or a
// channel failure. Spawn failures are printed and the loop continues.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, d *taskmgr.Dispatcher) error {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	m := &menu{in: sc, out: out, d: d}

	fmt.Fprint(out, banner)
	for {
		fmt.Fprint(out, menuText)
		tok, ok := m.next()
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		err := m.handle(ctx, tok)
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *menu) next() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

// readInt prompts and parses one int32. io.EOF is returned on end of input.
func (m *menu) readInt(prompt string) (int32, error) {
	fmt.Fprint(m.out, prompt)
	tok, ok := m.next()
	if !ok {
		return 0, io.EOF
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return int32(n), nil
}

func (m *menu) handle(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return m.setTimeout()
	case "2":
		return m.addTask(ctx)
	case "3":
		return m.show(ctx)
	case "4":
		if err := m.d.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "Shared memory cleared.")
	case "5":
		m.status()
	case "6":
		fmt.Fprintln(m.out, "Exiting...")
		return errExit
	default:
		fmt.Fprintln(m.out, "Invalid choice. Please try again.")
	}
	return nil
}

func (m *menu) setTimeout() error {
	ms, err := m.readInt("Enter deadlock timeout in milliseconds: ")
	if errors.Is(err, io.EOF) {
		return errExit
	}
	if err != nil || ms < 0 {
		fmt.Fprintln(m.out, "Invalid timeout. Please try again.")
		return nil
	}
	m.d.SetTimeout(time.Duration(ms) * time.Millisecond)
	return nil
}

func (m *menu) addTask(ctx context.Context) error {
	var vals [3]int32
	prompts := [3]string{
		"Enter task identifier (1: Addition, 2: Subtraction, 3: Multiplication, 4: Division, 5: Modulus): ",
		"Enter the first number: ",
		"Enter the second number: ",
	}
	for i, p := range prompts {
		v, err := m.readInt(p)
		if errors.Is(err, io.EOF) {
			return errExit
		}
		if err != nil {
			fmt.Fprintln(m.out, "Invalid number. Please try again.")
			return nil
		}
		vals[i] = v
	}

	res, err := m.d.Submit(ctx, taskmgr.Record{Kind: taskmgr.Kind(vals[0]), A: vals[1], B: vals[2]})
	switch {
	case errors.Is(err, taskmgr.ErrAllocationFailed), errors.Is(err, taskmgr.ErrAttachFailed):
		return err
	case err != nil:
		fmt.Fprintf(m.out, "Failed to fork a worker: %v\n", err)
		return nil
	}
	if res.ExitCode != taskmgr.ExitOK {
		fmt.Fprintf(m.out, "Worker exited with code %d: %v\n", res.ExitCode, res.Err())
	}
	return nil
}

func (m *menu) show(ctx context.Context) error {
	rec, err := m.d.Inspect(ctx)
	if err != nil {
		return err
	}
	printRecord(m.out, rec)
	return nil
}

func (m *menu) status() {
	if m.d.Busy() {
		fmt.Fprintln(m.out, "Task manager is currently processing tasks.")
	} else {
		fmt.Fprintln(m.out, "Task manager is idle.")
	}
	st := m.d.Stats()
	if st.Count > 0 {
		fmt.Fprintf(m.out, "Dispatched: %d (failed %d), p50 %s, p99 %s, max %s\n",
			st.Count, st.Failed, st.P50, st.P99, st.Max)
	}
}

func printRecord(w io.Writer, r taskmgr.Record) {
	fmt.Fprintln(w, "Shared Memory Contents:")
	fmt.Fprintf(w, "Task Identifier: %d\n", int32(r.Kind))
	fmt.Fprintf(w, "Number 1: %d\n", r.A)
	fmt.Fprintf(w, "Number 2: %d\n", r.B)
}
