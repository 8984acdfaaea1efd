package main

import (
	"github.com/mj1618/desktop-harness/cmd"

	_ "github.com/mj1618/desktop-harness/internal/platform/sim"
)

func main() {
	cmd.Execute()
}
