package buildinfo

import "testing"

// Compile-time check that Context satisfies BuildInfo.
var _ BuildInfo = (*Context)(nil)

func TestContextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{
			name: "injected version",
			ctx:  NewContext("v1.2.3", "2026-01-15"),
			want: "v1.2.3",
		},
		{
			name: "empty version falls back to unknown",
			ctx:  NewContext("", "2026-01-15"),
			want: UnknownValue,
		},
		{
			name: "nil context",
			ctx:  nil,
			want: UnknownValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ctx.Version(); got != tt.want {
				t.Errorf("Context.Version() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextBuildDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{
			name: "injected build date",
			ctx:  NewContext("v1.2.3", "2026-01-15T10:30:00Z"),
			want: "2026-01-15T10:30:00Z",
		},
		{
			name: "empty build date falls back to unknown",
			ctx:  NewContext("v1.2.3", ""),
			want: UnknownValue,
		},
		{
			name: "nil context",
			ctx:  nil,
			want: UnknownValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ctx.BuildDate(); got != tt.want {
				t.Errorf("Context.BuildDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextThroughInterface(t *testing.T) {
	t.Parallel()

	var info BuildInfo = NewContext("nightly-20260115", "2026-01-15")
	if got := info.Version(); got != "nightly-20260115" {
		t.Errorf("BuildInfo.Version() = %v, want %v", got, "nightly-20260115")
	}
	if got := info.BuildDate(); got != "2026-01-15" {
		t.Errorf("BuildInfo.BuildDate() = %v, want %v", got, "2026-01-15")
	}
}
