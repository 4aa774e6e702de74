package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionShort bool

// versionCmd prints build details of the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of codescore.",
	Long: `Display the release version, git commit, build time and the Go
runtime the binary was built with. Use --short for the release version only.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("codescore %s\n", version)
		cmd.Printf("  commit:   %s\n", commit)
		cmd.Printf("  built:    %s\n", date)
		cmd.Printf("  go:       %s\n", runtime.Version())
		cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
