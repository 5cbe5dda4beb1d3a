package types

import (
	"errors"
	"testing"
)

func TestDeclare(t *testing.T) {
	tests := []struct {
		name      string
		names     []string
		wantErr   error
		wantAttrs int
	}{
		{"single name", []string{"enabled"}, nil, 1},
		{"several names", []string{"enabled", "retries", "label"}, nil, 3},
		{"no names", nil, nil, 0},
		{"empty name rejected", []string{"enabled", ""}, ErrInvalidName, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewRoot("Base")

			attrs, err := n.Declare(tt.names...)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Declare(%q) error = %v, want %v", tt.names, err, tt.wantErr)
			}
			if len(attrs) != tt.wantAttrs {
				t.Fatalf("Declare(%q) returned %d accessors, want %d", tt.names, len(attrs), tt.wantAttrs)
			}
			if err != nil {
				if got := n.Declared(); len(got) != 0 {
					t.Errorf("failed Declare left names %v declared", got)
				}
				return
			}
			for i, a := range attrs {
				if a.Name() != tt.names[i] {
					t.Errorf("attrs[%d].Name() = %q, want %q", i, a.Name(), tt.names[i])
				}
				if a.Node() != n {
					t.Errorf("attrs[%d].Node() = %v, want %v", i, a.Node(), n)
				}
				if v := a.Get(); v != nil {
					t.Errorf("attrs[%d].Get() = %v, want nil baseline", i, v)
				}
			}
		})
	}
}

func TestDeclareIsIdempotent(t *testing.T) {
	n := NewRoot("Base")
	attrs, err := n.Declare("enabled")
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	attrs[0].Set(true)

	again, err := n.Declare("enabled")
	if err != nil {
		t.Fatalf("re-Declare: %v", err)
	}
	if v := again[0].Get(); v != true {
		t.Errorf("after re-Declare Get() = %v, want true", v)
	}
	if got := n.Declared(); len(got) != 1 {
		t.Errorf("Declared() = %v, want one name", got)
	}
}

func TestAttributeSetReturnsValue(t *testing.T) {
	n := NewRoot("Base")
	attrs, _ := n.Declare("retries")

	if got := attrs[0].Set(3); got != 3 {
		t.Errorf("Set(3) = %v, want 3", got)
	}
	if got := attrs[0].Get(); got != 3 {
		t.Errorf("Get() = %v, want 3", got)
	}
}

func TestAttrBindsToDescendant(t *testing.T) {
	base := NewRoot("Base")
	derived := base.NewChild("Derived")
	baseAttrs, _ := base.Declare("enabled")
	baseAttrs[0].Set(true)

	a, err := derived.Attr("enabled")
	if err != nil {
		t.Fatalf("Attr: %v", err)
	}
	if a.Get() != true {
		t.Errorf("inherited Get() = %v, want true", a.Get())
	}

	a.Set(false)
	if baseAttrs[0].Get() != true {
		t.Errorf("descendant Set leaked to Base: %v", baseAttrs[0].Get())
	}
	if a.Get() != false {
		t.Errorf("descendant Get() = %v, want false", a.Get())
	}

	if _, err := derived.Attr("missing"); !errors.Is(err, ErrNotDeclared) {
		t.Errorf("Attr(missing) error = %v, want %v", err, ErrNotDeclared)
	}
}
