// objcore CLI - builds byte sequences and prints their repr, hash and encoding
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/objcore/codec"
	"github.com/chazu/objcore/config"
	"github.com/chazu/objcore/vm"
)

const historyFile = ".objcore_history"

func main() {
	verbosity := flag.Int("v", -1, "Log verbosity (overrides log-verbosity in objcore.toml)")
	configDir := flag.String("config", ".", "Directory to search upward for objcore.toml")
	expr := flag.String("e", "", "Evaluate one line and exit")
	className := flag.String("class", "bytes", "Class used to construct values (bytes or a declared subclass)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: objcore [options]\n\n")
		fmt.Fprintf(os.Stderr, "Constructs byte sequences from lists of integers and prints their\n")
		fmt.Fprintf(os.Stderr, "representation, hash and CBOR encoding.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  objcore                          # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  objcore -e \"0 255 16\"            # b'\\x00\\xff\\x10'\n")
		fmt.Fprintf(os.Stderr, "  objcore -e \"1, 2 == 1, 2\"        # Compare two values\n")
		fmt.Fprintf(os.Stderr, "  objcore -class net::Packet -e 7  # Construct a declared subclass\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	level := cfg.Runtime.LogVerbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	commonlog.Configure(level, nil)

	ctx, err := cfg.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cls := ctx.Classes.Lookup(*className)
	if cls == nil || !vm.IsSubclass(cls, ctx.BytesType) {
		fmt.Fprintf(os.Stderr, "Error: %s is not bytes or a registered subclass of bytes\n", *className)
		os.Exit(1)
	}

	if *expr != "" {
		out, err := evalLine(ctx, cls, *expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		os.Exit(0)
	}

	runREPL(ctx, cls, os.Stdout)
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

// evalLine evaluates one input line. A line is a list of integers
// separated by whitespace or commas, or two such lists joined by "==".
func evalLine(ctx *vm.Context, cls *vm.Class, line string) (string, error) {
	if left, right, ok := strings.Cut(line, "=="); ok {
		a, err := construct(ctx, cls, left)
		if err != nil {
			return "", err
		}
		b, err := construct(ctx, cls, right)
		if err != nil {
			return "", err
		}
		eq, err := ctx.Equals(a, b)
		if err != nil {
			return "", err
		}
		return ctx.Repr(ctx.NewBool(eq))
	}

	v, err := construct(ctx, cls, line)
	if err != nil {
		return "", err
	}
	return describe(ctx, v)
}

// construct calls cls with the integer tokens of text. Tokens are passed
// as str values so that int conversion and range checks happen inside
// the runtime.
func construct(ctx *vm.Context, cls *vm.Class, text string) (vm.Value, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '[' || r == ']'
	})
	elems := make([]vm.Value, len(fields))
	for i, f := range fields {
		elems[i] = ctx.NewStr(f)
	}
	return ctx.Call(cls.Value(), vm.Positional(ctx.NewList(elems...)))
}

// describe renders the repr, hash and CBOR encoding of v.
func describe(ctx *vm.Context, v vm.Value) (string, error) {
	repr, err := ctx.Repr(v)
	if err != nil {
		return "", err
	}
	h, err := ctx.Hash(v)
	if err != nil {
		return "", err
	}
	data, err := codec.Marshal(ctx, v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nhash: %s\ncbor: %s", repr, h.Text(16), hex.EncodeToString(data)), nil
}

// ---------------------------------------------------------------------------
// REPL
// ---------------------------------------------------------------------------

func runREPL(ctx *vm.Context, cls *vm.Class, out io.Writer) {
	fmt.Fprintf(out, "objcore REPL, constructing %s (:quit to exit, :help for commands)\n", cls.FullName())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(">> ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			fmt.Fprintln(out)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			next, quit := handleCommand(ctx, cls, line, out)
			if quit {
				return
			}
			cls = next
			continue
		}

		result, err := evalLine(ctx, cls, line)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		fmt.Fprintln(out, result)
	}
}

// handleCommand runs a REPL command and returns the class to construct
// with from now on, and whether to exit.
func handleCommand(ctx *vm.Context, cls *vm.Class, line string, out io.Writer) (*vm.Class, bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case ":quit", ":q":
		return cls, true
	case ":help":
		fmt.Fprintln(out, "  0 255 16        construct a value and print repr, hash and encoding")
		fmt.Fprintln(out, "  1 2 == 1 2      compare two values")
		fmt.Fprintln(out, "  :classes        list registered subclasses of bytes")
		fmt.Fprintln(out, "  :class NAME     construct values of class NAME")
		fmt.Fprintln(out, "  :quit           exit")
	case ":classes":
		for _, c := range ctx.Classes.All() {
			if vm.IsSubclass(c, ctx.BytesType) {
				fmt.Fprintln(out, "  "+c.FullName())
			}
		}
	case ":class":
		next := ctx.Classes.Lookup(strings.TrimSpace(arg))
		if next == nil || !vm.IsSubclass(next, ctx.BytesType) {
			fmt.Fprintf(out, "%s is not bytes or a registered subclass of bytes\n", strings.TrimSpace(arg))
			return cls, false
		}
		return next, false
	default:
		fmt.Fprintf(out, "unknown command %s, type :help\n", cmd)
	}
	return cls, false
}
