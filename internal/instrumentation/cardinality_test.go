package instrumentation

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/mcp", "/mcp"},
		{"/metrics", "/metrics"},
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/healthz/detailed", "/healthz/detailed"},
		{"/mcp/extra", "other"},
		{"/wp-login.php", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestOperationConstants(t *testing.T) {
	ops := []string{
		OperationListTaskLists,
		OperationListTasks,
		OperationGetTask,
		OperationInsertTask,
		OperationUpdateTask,
		OperationDeleteTask,
		OperationClearCompleted,
	}

	seen := make(map[string]bool)
	for _, op := range ops {
		if op == "" {
			t.Error("operation constant must not be empty")
		}
		if seen[op] {
			t.Errorf("duplicate operation constant %q", op)
		}
		seen[op] = true
	}
}
