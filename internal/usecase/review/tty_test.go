package review

import (
	"os"
	"testing"
)

func TestIsTTY(t *testing.T) {
	// Depends on environment: false in CI, true on a terminal.
	result := IsTTY(os.Stdin.Fd())
	t.Logf("IsTTY(stdin) = %v", result)
}

func TestIsOutputTerminal_Consistency(t *testing.T) {
	if IsOutputTerminal() != IsTTY(os.Stdout.Fd()) {
		t.Error("IsOutputTerminal should match IsTTY(stdout)")
	}
}
