package main

import (
	"testing"
)

// TestMain_Imports verifies that main package compiles and imports work
func TestMain_Imports(t *testing.T) {
	// main() exits through cmd.Execute, so the commands are tested in
	// the cmd package
}
