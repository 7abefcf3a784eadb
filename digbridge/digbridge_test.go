package digbridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/fcagreatgoals/injector"
)

type (
	database struct{ DSN string }
	mailer   struct{ Host string }
	consumer struct {
		DB     *database
		Mailer *mailer
	}
)

func newContainer(t *testing.T) *injector.Container {
	t.Helper()
	c := injector.New(injector.WithMetadata(injector.NewMetadata()))
	t.Cleanup(func() { _ = c.Destroy() })
	return c
}

func TestProvide(t *testing.T) {
	t.Run("shares registered instances with dig", func(t *testing.T) {
		c := newContainer(t)
		db := &database{DSN: "postgres://localhost"}
		require.NoError(t, c.Register(injector.Class[*database](), db))

		dc := dig.New()
		require.NoError(t, ProvideClass[*database](dc, c))

		var got *database
		require.NoError(t, dc.Invoke(func(d *database) { got = d }))
		assert.Same(t, db, got)
	})

	t.Run("arbitrary keys", func(t *testing.T) {
		c := newContainer(t)
		require.NoError(t, c.Register("smtp", &mailer{Host: "mail.example.com"}))

		dc := dig.New()
		require.NoError(t, Provide[*mailer](dc, c, "smtp"))

		var host string
		require.NoError(t, dc.Invoke(func(m *mailer) { host = m.Host }))
		assert.Equal(t, "mail.example.com", host)
	})

	t.Run("resolution errors reach dig", func(t *testing.T) {
		c := newContainer(t)

		dc := dig.New()
		require.NoError(t, Provide[*mailer](dc, c, "smtp"))

		err := dc.Invoke(func(*mailer) {})
		require.Error(t, err)
		assert.ErrorIs(t, dig.RootCause(err), injector.ErrUnregisteredKey)
	})

	t.Run("dig options apply", func(t *testing.T) {
		c := newContainer(t)
		require.NoError(t, c.Register("primary", &database{DSN: "primary"}))

		dc := dig.New()
		require.NoError(t, Provide[*database](dc, c, "primary", dig.Name("primary")))

		type params struct {
			dig.In
			DB *database `name:"primary"`
		}

		var dsn string
		require.NoError(t, dc.Invoke(func(p params) { dsn = p.DB.DSN }))
		assert.Equal(t, "primary", dsn)
	})

	t.Run("nil container", func(t *testing.T) {
		assert.ErrorIs(t, ProvideClass[*database](dig.New(), nil), injector.ErrContainerNil)
	})
}

func TestRegister(t *testing.T) {
	t.Run("builds classes through dig", func(t *testing.T) {
		dc := dig.New()
		require.NoError(t, dc.Provide(func() *mailer { return &mailer{Host: "dig"} }))

		c := newContainer(t)
		require.NoError(t, Register[*mailer](c, dc, injector.AsSingleton()))

		m, err := injector.ResolveClass[*mailer](c)
		require.NoError(t, err)
		assert.Equal(t, "dig", m.Host)

		info, ok := c.Inspect(injector.Class[*mailer]())
		require.True(t, ok)
		assert.Equal(t, injector.Singleton, info.Lifetime)
		assert.True(t, info.HasInstance)
	})

	t.Run("dig instances feed injector properties", func(t *testing.T) {
		dc := dig.New()
		require.NoError(t, dc.Provide(func() *mailer { return &mailer{Host: "dig"} }))

		m := injector.NewMetadata()
		require.NoError(t, m.Declare(injector.Class[*consumer]().Type(),
			injector.InjectProperty("DB", "db"),
			injector.InjectProperty("Mailer", nil),
		))

		c := injector.New(injector.WithMetadata(m))
		defer c.Destroy()
		require.NoError(t, c.Register("db", &database{DSN: "local"}))
		require.NoError(t, Register[*mailer](c, dc))

		got, err := injector.ResolveClass[*consumer](c)
		require.NoError(t, err)
		assert.Equal(t, "local", got.DB.DSN)
		assert.Equal(t, "dig", got.Mailer.Host)
	})

	t.Run("dig failures become constructor errors", func(t *testing.T) {
		c := newContainer(t)
		require.NoError(t, Register[*mailer](c, dig.New()))

		_, err := injector.ResolveClass[*mailer](c)

		var ctorErr injector.ConstructorError
		require.True(t, errors.As(err, &ctorErr))
		assert.Equal(t, injector.Class[*mailer](), ctorErr.Class)
	})

	t.Run("eager registration fails fast", func(t *testing.T) {
		c := newContainer(t)

		err := Register[*mailer](c, dig.New(), injector.Eager())
		require.Error(t, err)
		assert.False(t, c.Has(injector.Class[*mailer]()))
	})

	t.Run("nil container", func(t *testing.T) {
		assert.ErrorIs(t, Register[*mailer](nil, dig.New()), injector.ErrContainerNil)
	})
}
