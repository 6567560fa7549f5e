package labeldir

import (
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

func TestSetGet(t *testing.T) {
	is := is.New(t)
	m := New(0, DefaultLoadFactor)
	is.Equal(m.Len(), 0)
	is.True(!m.Get(5).Valid())

	m.Set(5, 0)
	m.Set(-7, 1)
	m.Set(1<<62, 2)

	it := m.Get(5)
	is.True(it.Valid())
	is.Equal(it.Key(), int64(5))
	is.Equal(it.Value(), int64(0))
	v, ok := m.Lookup(-7)
	is.True(ok)
	is.Equal(v, int64(1))
	is.True(m.Contains(1 << 62))
	is.True(!m.Contains(6))
	is.Equal(m.Len(), 3)

	m.Set(5, 42)
	is.Equal(m.Get(5).Value(), int64(42))
	is.Equal(m.Len(), 3)
}

func TestLoadFactorClamp(t *testing.T) {
	is := is.New(t)
	is.Equal(New(0, 0.01).loadFactor, MinLoadFactor)
	is.Equal(New(0, 0.99).loadFactor, MaxLoadFactor)
	is.Equal(New(0, 0.6).loadFactor, 0.6)
}

func TestGrowth(t *testing.T) {
	is := is.New(t)
	m := New(0, MaxLoadFactor)
	is.Equal(m.Capacity(), minCapacity)
	for i := int64(0); i < 1000; i++ {
		m.Set(i*3, i)
		is.True(float64(m.Len()) <= MaxLoadFactor*float64(m.Capacity()))
		c := m.Capacity()
		is.Equal(c&(c-1), 0)
	}
	for i := int64(0); i < 1000; i++ {
		v, ok := m.Lookup(i * 3)
		is.True(ok)
		is.Equal(v, i)
		is.True(!m.Contains(i*3 + 1))
	}

	presized := New(1000, MaxLoadFactor)
	c := presized.Capacity()
	for i := int64(0); i < 1000; i++ {
		presized.Set(i, i)
	}
	is.Equal(presized.Capacity(), c)
}

func TestIterationMatchesBuiltinMap(t *testing.T) {
	is := is.New(t)
	m := New(4, 0.5)
	want := map[int64]int64{}
	for i := 0; i < 500; i++ {
		k := int64(frand.Uint64n(1 << 40))
		v := int64(i)
		m.Set(k, v)
		want[k] = v
	}
	is.Equal(m.Len(), len(want))

	got := map[int64]int64{}
	for it := m.Begin(); it.Valid(); it.Next() {
		got[it.Key()] = it.Value()
	}
	is.Equal(got, want)

	got = map[int64]int64{}
	for k, v := range m.All() {
		got[k] = v
	}
	is.Equal(got, want)
}

func TestClear(t *testing.T) {
	is := is.New(t)
	m := New(16, DefaultLoadFactor)
	m.Set(1, 1)
	m.Set(2, 2)
	m.Clear()
	is.Equal(m.Len(), 0)
	is.True(!m.Contains(1))
	is.True(!m.Begin().Valid())
}

func TestHashIsBijective(t *testing.T) {
	is := is.New(t)
	seen := map[uint64]bool{}
	for i := uint64(0); i < 4096; i++ {
		h := hashUint64(i)
		is.True(!seen[h])
		seen[h] = true
	}
	is.Equal(hashUint64(0), uint64(0))
}
