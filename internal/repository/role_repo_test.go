package repository_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// The grant INSERT in RoleRepository names its columns explicitly, so the
// user_roles DDL must keep exactly those columns or every role grant fails
// at runtime with an undefined-column error.
func TestUserRolesMigration_CoversGrantColumns(t *testing.T) {
	path := filepath.Join("..", "..", "migrations", "002_user_roles.sql")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	ddl := string(raw)

	if !strings.Contains(ddl, "user_roles") {
		t.Fatalf("migration %s does not define user_roles", path)
	}
	for _, col := range []string{"user_id", "role", "created_at"} {
		if !strings.Contains(ddl, col) {
			t.Errorf("user_roles DDL is missing column %q written by Grant", col)
		}
	}
}
