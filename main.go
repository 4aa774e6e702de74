// Package main is the entry point for the codescore CLI.
package main

import (
	"github.com/huangsam/codescore/cmd"
	"github.com/huangsam/codescore/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("codescore", err)
	}
}
