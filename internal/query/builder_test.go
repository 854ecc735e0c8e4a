package query

import "testing"

func TestBuilderCompile(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Builder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty",
			build:   NewBuilder,
			wantSQL: "",
		},
		{
			name: "single equality",
			build: func() *Builder {
				return NewBuilder().WhereEq("user_id", "u1")
			},
			wantSQL:  "user_id = ?",
			wantArgs: []any{"u1"},
		},
		{
			name: "conjunction preserves order",
			build: func() *Builder {
				return NewBuilder().
					WhereEq("user_id", "u1").
					WhereEq("kind", "expense").
					Where("date", OpGte, "2024-01-01").
					Where("date", OpLte, "2024-01-31")
			},
			wantSQL:  "user_id = ? AND kind = ? AND date >= ? AND date <= ?",
			wantArgs: []any{"u1", "expense", "2024-01-01", "2024-01-31"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := tc.build().Compile()
			if sql != tc.wantSQL {
				t.Fatalf("sql = %q, want %q", sql, tc.wantSQL)
			}
			if len(args) != len(tc.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tc.wantArgs)
			}
			for i := range args {
				if args[i] != tc.wantArgs[i] {
					t.Fatalf("arg %d = %v, want %v", i, args[i], tc.wantArgs[i])
				}
			}
		})
	}
}

func TestBuilderLen(t *testing.T) {
	b := NewBuilder()
	if b.Len() != 0 {
		t.Fatalf("expected empty builder")
	}
	b.WhereEq("a", 1).WhereEq("b", 2)
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}
