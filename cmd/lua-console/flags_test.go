package main

import (
	"io"
	"reflect"
	"testing"
)

func TestParseArgsCollectsRepeatableFlags(t *testing.T) {
	args, err := parseArgs([]string{
		"-c", "max_input=64",
		"-c", "restore_history=false",
		"-e", "print(1)",
		"-roots", "a, b",
		"-roots", "c",
		"-headless",
		"boot.lua",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !reflect.DeepEqual([]string(args.configOverrides), []string{"max_input=64", "restore_history=false"}) {
		t.Fatalf("overrides = %v", args.configOverrides)
	}
	if !reflect.DeepEqual([]string(args.roots), []string{"a", "b", "c"}) {
		t.Fatalf("roots = %v", args.roots)
	}
	wantExec := []string{"print(1)", "script([[boot.lua]])"}
	if !reflect.DeepEqual([]string(args.exec), wantExec) {
		t.Fatalf("exec = %v", args.exec)
	}
	if args.interactive() {
		t.Fatalf("headless args reported interactive")
	}
	if args.writeConfig || args.noHistory {
		t.Fatalf("unexpected bool flags: %+v", args)
	}
}

func TestParseArgsDefaultsToInteractive(t *testing.T) {
	args, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !args.interactive() {
		t.Fatalf("expected interactive mode")
	}
	if _, err := parseArgs([]string{"-nope"}, io.Discard); err == nil {
		t.Fatalf("unknown flag should fail")
	}
}

func TestQuoteLua(t *testing.T) {
	cases := map[string]string{
		"a.lua":    "[[a.lua]]",
		"x]]y.lua": "[=[x]]y.lua]=]",
		"x]]]=]y":  "[==[x]]]=]y]==]",
	}
	for in, want := range cases {
		if got := quoteLua(in); got != want {
			t.Fatalf("quoteLua(%q) = %q, want %q", in, got, want)
		}
	}
}
