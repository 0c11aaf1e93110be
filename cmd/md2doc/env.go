package main

import (
	"io"
	"os"
	"time"
)

// Environment is everything a command reads from or writes to the process.
// Tests substitute buffers, a fixed clock and a fake environment.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
	Getenv func(string) string
}

// DefaultEnv wires the real process.
func DefaultEnv() *Environment {
	return &Environment{Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now, Getenv: os.Getenv}
}
