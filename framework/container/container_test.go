package container_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-envguard/framework/container"
)

type service struct{ id int64 }

func TestContainer_BindIsTransient(t *testing.T) {
	c := container.New()
	var n int64
	c.Bind("svc", func(*container.Container) any { return &service{id: atomic.AddInt64(&n, 1)} })

	a := c.Make("svc").(*service)
	b := c.Make("svc").(*service)
	assert.NotSame(t, a, b)
	assert.Equal(t, int64(2), n)
}

func TestContainer_SingletonIsCached(t *testing.T) {
	c := container.New()
	var n int64
	c.Singleton("svc", func(*container.Container) any { return &service{id: atomic.AddInt64(&n, 1)} })

	var wg sync.WaitGroup
	got := make([]*service, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Make("svc").(*service)
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}

func TestContainer_RebindDropsCachedSingleton(t *testing.T) {
	c := container.New()
	c.Singleton("name", func(*container.Container) any { return "first" })
	assert.Equal(t, "first", c.Make("name"))

	c.Singleton("name", func(*container.Container) any { return "second" })
	assert.Equal(t, "second", c.Make("name"))
}

func TestContainer_Instance(t *testing.T) {
	c := container.New()
	c.Bind("x", func(*container.Container) any { return "factory" })
	c.Instance("x", "instance")
	assert.Equal(t, "instance", c.Make("x"))
	assert.Same(t, c, c.Make("container"))
}

func TestContainer_Alias(t *testing.T) {
	c := container.New()
	c.Instance(container.Config, "cfg")
	c.Alias(container.Config, "configuration")

	assert.Equal(t, "cfg", c.Make("configuration"))
	assert.True(t, c.Bound("configuration"))
	assert.Panics(t, func() { c.Alias("a", "a") })
}

func TestContainer_FactoryCanResolveDependencies(t *testing.T) {
	c := container.New()
	c.Instance("port", 8080)
	c.Singleton("addr", func(c *container.Container) any {
		return container.Resolve[int](c, "port") + 1
	})
	assert.Equal(t, 8081, c.Make("addr"))
}

func TestContainer_MakeUnbound_Panics(t *testing.T) {
	c := container.New()
	assert.PanicsWithValue(t, "container: no binding registered for [missing]", func() { c.Make("missing") })
}

func TestContainer_ForgetAndBindings(t *testing.T) {
	c := container.New()
	c.Instance("b", 1)
	c.Bind("a", func(*container.Container) any { return 2 })

	assert.Equal(t, []string{"a", "b", "container"}, c.Bindings())

	c.Forget("a")
	assert.False(t, c.Bound("a"))
	assert.Equal(t, []string{"b", "container"}, c.Bindings())
}

func TestResolve_WrongType_Panics(t *testing.T) {
	c := container.New()
	c.Instance("n", 1)
	assert.Panics(t, func() { container.Resolve[string](c, "n") })
}

func TestTryResolve(t *testing.T) {
	c := container.New()
	c.Instance("n", 1)

	n, ok := container.TryResolve[int](c, "n")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = container.TryResolve[string](c, "n")
	assert.False(t, ok)

	_, ok = container.TryResolve[int](c, "missing")
	assert.False(t, ok)
}
