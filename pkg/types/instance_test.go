package types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	base := NewRoot("Base")
	derived := base.NewChild("Derived")
	sibling := base.NewChild("Sibling")

	// 1. Declared but never set resolves to the baseline.
	_, err := base.Declare("enabled")
	require.NoError(t, err)
	v, err := base.Get("enabled")
	require.NoError(t, err)
	assert.Nil(t, v)

	// 2. A value set on Base reaches Derived.
	_, err = base.Set("enabled", true)
	require.NoError(t, err)
	assert.Equal(t, true, Resolve(base, "enabled"))
	assert.Equal(t, true, Resolve(derived, "enabled"))

	// 3. Derived shadows Base for its own subtree only.
	_, err = derived.Set("enabled", false)
	require.NoError(t, err)
	assert.Equal(t, false, Resolve(derived, "enabled"))
	assert.Equal(t, true, Resolve(base, "enabled"))
	assert.Equal(t, true, Resolve(sibling, "enabled"))

	// 4. A promoted instance's override wins for that instance alone.
	d := NewInstance("d", derived)
	e := NewInstance("e", derived)
	d.Promote()
	_, err = d.SetOverride("enabled", true)
	require.NoError(t, err)

	got, err := d.Get("enabled")
	require.NoError(t, err)
	assert.Equal(t, true, got)
	assert.Equal(t, false, Resolve(derived, "enabled"))
	got, err = e.Get("enabled")
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestOverrideSurvivesTypeChanges(t *testing.T) {
	base := NewRoot("Base")
	_, err := base.Declare("enabled")
	require.NoError(t, err)
	i := NewInstance("i", base)
	j := NewInstance("j", base)
	i.Promote()

	_, err = i.SetOverride("enabled", "mine")
	require.NoError(t, err)
	_, err = base.Set("enabled", "type")
	require.NoError(t, err)

	got, _ := i.Get("enabled")
	assert.Equal(t, "mine", got)
	got, _ = j.Get("enabled")
	assert.Equal(t, "type", got)
	assert.Equal(t, map[string]any{"enabled": "type"}, base.Defaults(), "override must not reach the type")
}

func TestSetOverrideErrors(t *testing.T) {
	tests := []struct {
		name     string
		promote  bool
		declare  string // declared on the type
		layer    string // declared on the instance layer
		attr     string
		wantErr  error
		promoted bool // promoted after the call
	}{
		{"unpromoted and undeclared", false, "", "", "enabled", ErrInvalidPromotion, false},
		{"unpromoted but declared on type promotes", false, "enabled", "", "enabled", nil, true},
		{"promoted but undeclared", true, "", "", "enabled", ErrNotDeclared, true},
		{"promoted and declared on layer only", true, "", "enabled", "enabled", nil, true},
		{"promoted and declared on type", true, "enabled", "", "enabled", nil, true},
		{"empty name", true, "", "", "", ErrInvalidName, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := NewRoot("Base")
			if tt.declare != "" {
				_, err := typ.Declare(tt.declare)
				require.NoError(t, err)
			}
			inst := NewInstance("x", typ)
			if tt.promote {
				l := inst.Promote()
				if tt.layer != "" {
					_, err := l.Declare(tt.layer)
					require.NoError(t, err)
				}
			}

			v, err := inst.SetOverride(tt.attr, 42)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), inst.String())
				_, ok := inst.Override(tt.attr)
				assert.False(t, ok)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 42, v)
			}
			assert.Equal(t, tt.promoted, inst.Promoted())
		})
	}
}

func TestInstanceGetRequiresDeclaration(t *testing.T) {
	typ := NewRoot("Base")
	inst := NewInstance("x", typ)

	_, err := inst.Get("enabled")
	assert.ErrorIs(t, err, ErrNotDeclared)

	attrs, err := inst.Promote().Declare("enabled")
	require.NoError(t, err)
	v, err := inst.Get("enabled")
	require.NoError(t, err)
	assert.Nil(t, v, "layer-only declaration falls back to the baseline")
	assert.Nil(t, attrs[0].Get())
}

func TestInstanceAttributeReadsOverrideThenType(t *testing.T) {
	base := NewRoot("Base")
	derived := base.NewChild("Derived")
	_, err := base.Declare("enabled")
	require.NoError(t, err)
	_, err = base.Set("enabled", "base")
	require.NoError(t, err)

	inst := NewInstance("x", derived)
	attrs, err := inst.Promote().Declare("enabled")
	require.NoError(t, err)
	a := attrs[0]
	assert.Equal(t, "enabled", a.Name())
	assert.Equal(t, "base", a.Get())

	assert.Equal(t, "own", a.Set("own"))
	assert.Equal(t, "own", a.Get())
	assert.Equal(t, "base", Resolve(derived, "enabled"))
}

func TestExplain(t *testing.T) {
	base := NewRoot("Base")
	derived := base.NewChild("Derived")
	_, err := base.Declare("enabled")
	require.NoError(t, err)
	inst := NewInstance("x", derived)

	res, err := inst.Explain("enabled")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Source: SourceBaseline}, res)

	_, err = base.Set("enabled", true)
	require.NoError(t, err)
	res, err = inst.Explain("enabled")
	require.NoError(t, err)
	assert.Equal(t, SourceType, res.Source)
	assert.Same(t, base, res.Origin)
	assert.Equal(t, true, res.Value)

	_, err = inst.SetOverride("enabled", false)
	require.NoError(t, err)
	res, err = inst.Explain("enabled")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Value: false, Source: SourceOverride}, res)
}

func TestPromoteIsIdempotent(t *testing.T) {
	inst := NewInstance("x", NewRoot("Base"))
	assert.Nil(t, inst.Layer())
	assert.False(t, inst.Promoted())

	l := inst.Promote()
	assert.Same(t, l, inst.Promote())
	assert.Same(t, l, inst.Layer())
	assert.Same(t, inst, l.Instance())

	again, created := inst.PromoteOnce()
	assert.Same(t, l, again)
	assert.False(t, created)
}

func TestPromoteOnceCreatesOneLayer(t *testing.T) {
	inst := NewInstance("x", NewRoot("Base"))

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
		layers  = make(map[*Layer]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, created := inst.PromoteOnce()
			mu.Lock()
			defer mu.Unlock()
			layers[l] = true
			if created {
				creates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, creates)
	assert.Len(t, layers, 1)
}

func TestLayerCopies(t *testing.T) {
	typ := NewRoot("Base")
	_, err := typ.Declare("a")
	require.NoError(t, err)
	inst := NewInstance("x", typ)
	l := inst.Promote()
	_, err = l.Declare("b", "c")
	require.NoError(t, err)
	_, err = inst.SetOverride("a", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, l.Declared())
	o := l.Overrides()
	assert.Equal(t, map[string]any{"a": 1}, o)
	o["a"] = 2
	v, _ := inst.Override("a")
	assert.Equal(t, 1, v)

	_, err = l.Declare("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestConcurrentAccess(t *testing.T) {
	base := NewRoot("Base")
	mid := base.NewChild("Mid")
	leaf := mid.NewChild("Leaf")
	_, err := base.Declare("counter")
	require.NoError(t, err)
	inst := NewInstance("x", leaf)

	const workers = 8
	const rounds = 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(3)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, _ = base.Set("counter", r)
				_, _ = mid.Set("counter", fmt.Sprintf("mid-%d", w))
			}
		}(w)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, _ = leaf.Get("counter")
				_ = leaf.Declared()
				_, _ = inst.Explain("counter")
			}
		}()
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				inst.Promote()
				_, _ = inst.SetOverride("counter", w)
			}
		}(w)
	}
	wg.Wait()

	_, ok := inst.Override("counter")
	assert.True(t, ok)
	v, origin, ok := leaf.Lookup("counter")
	require.True(t, ok)
	assert.Same(t, mid, origin)
	assert.IsType(t, "", v)
}
