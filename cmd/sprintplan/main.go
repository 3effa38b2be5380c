// Command sprintplan plans a prioritized backlog into capacity-bounded
// sprints and tracks team velocity.
package main

import (
	"os"

	"github.com/mesh-intelligence/sprintplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
