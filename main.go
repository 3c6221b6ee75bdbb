package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bitersun/Sa2VA/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
