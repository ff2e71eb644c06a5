package main

import (
	"os"

	"ultramdmemo/cmd/mdmemo/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
