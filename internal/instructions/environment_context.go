package instructions

import (
	"fmt"
	"strings"
)

// BuildSandboxContext renders the sandbox description sent with every
// prompt: the sandbox name, the manifest file name and the visible tree.
func BuildSandboxContext(name, manifestName string, tree []string) string {
	return fmt.Sprintf(`<sandbox_context>
  <name>%s</name>
  <manifest>%s</manifest>
  <tree>
%s
  </tree>
</sandbox_context>`, name, manifestName, strings.Join(tree, "\n"))
}
