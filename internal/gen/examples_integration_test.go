package gen_test

import (
	"os/exec"
	"path/filepath"
	"testing"
)

// Regenerates every examples package with the real CLI, then compiles
// and runs the examples tree so the emitted code is type-checked and
// its behavior exercised, not just matched as text.
func TestGenerate_Examples_CompileAndBehave(t *testing.T) {
	repoRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}

	examples := []string{"basic", "containers", "union", "multiparam", "recursive"}

	for _, dir := range examples {
		cmd := exec.Command("go", "run", "./cmd/funcmap", "-dir", "./examples/"+dir)
		cmd.Dir = repoRoot

		if b, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("funcmap ./examples/%s failed: %v\n%s", dir, err, string(b))
		}
	}

	run := exec.Command("go", "test", "./examples/...", "-count=1")
	run.Dir = repoRoot

	if b, err := run.CombinedOutput(); err != nil {
		t.Fatalf("examples failed: %v\n%s", err, string(b))
	}
}
