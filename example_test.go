package injector_test

import (
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/fcagreatgoals/injector"
)

// Example demonstrates declaring classes and resolving one with its
// dependencies.
func Example() {
	m := injector.NewMetadata()
	m.Declare(reflect.TypeFor[*Database](), injector.Constructor(NewDatabase), injector.InjectConstructor())
	m.Declare(reflect.TypeFor[*UserService](), injector.Constructor(NewUserService), injector.InjectConstructor())

	c := injector.New(injector.WithMetadata(m))
	defer c.Destroy()

	// Classes resolve without registration; registering makes them singletons.
	if err := injector.RegisterClass[*Logger](c, injector.AsSingleton()); err != nil {
		log.Fatal(err)
	}

	userService, err := injector.ResolveClass[*UserService](c)
	if err != nil {
		log.Fatal(err)
	}

	user := userService.GetUser(1)
	fmt.Println(user.Name)
	// Output: John Doe
}

// ExampleAsSingleton demonstrates that a singleton is built once, during
// Register.
func ExampleAsSingleton() {
	c := injector.New(injector.WithMetadata(injector.NewMetadata()))
	defer c.Destroy()

	_ = c.Register("logger", injector.Class[*Logger](), injector.AsSingleton())

	logger1, _ := injector.Resolve[*Logger](c, "logger")
	logger2, _ := injector.Resolve[*Logger](c, "logger")

	fmt.Println(logger1 == logger2)
	// Output: true
}

// ExampleFactory demonstrates how often a factory runs for each lifetime.
func ExampleFactory() {
	c := injector.New(injector.WithMetadata(injector.NewMetadata()))
	defer c.Destroy()

	calls := 0
	factory := injector.Factory(func() (any, error) {
		calls++
		return &Logger{prefix: "[factory] "}, nil
	})

	_ = c.Register("Logger", injector.Class[*Logger](), factory)
	c.Resolve("Logger")
	c.Resolve("Logger")
	fmt.Println("transient:", calls)

	calls = 0
	_ = c.Register("Logger", injector.Class[*Logger](), factory, injector.AsSingleton())
	c.Resolve("Logger")
	c.Resolve("Logger")
	fmt.Println("singleton:", calls)

	// Output:
	// transient: 2
	// singleton: 1
}

// ExampleInjectParam demonstrates per-parameter keys. Parameters without a
// declaration take their keys from the caller.
func ExampleInjectParam() {
	m := injector.NewMetadata()
	m.Declare(reflect.TypeFor[*Mailer](),
		injector.Constructor(NewMailer),
		injector.InjectParam(1, "smtp.host"),
	)

	c := injector.New(injector.WithMetadata(m))
	defer c.Destroy()

	_ = c.Register("smtp.host", "mail.example.com")
	_ = c.Register("smtp.from", "noreply@example.com")

	mailer, _ := injector.ResolveClass[*Mailer](c, "smtp.from")
	fmt.Println(mailer)
	// Output: noreply@example.com via mail.example.com
}

// ExampleContainer_Call demonstrates method injection.
func ExampleContainer_Call() {
	m := injector.NewMetadata()
	m.Declare(reflect.TypeFor[*Logger](), injector.Constructor(NewLogger))
	m.Declare(reflect.TypeFor[*UserService](),
		injector.Constructor(NewUserService),
		injector.InjectConstructor(),
		injector.InjectMethod("Greet"),
	)

	c := injector.New(injector.WithMetadata(m))
	defer c.Destroy()

	svc := injector.MustResolveClass[*UserService](c)

	// The *Logger parameter is injected, the name comes from the caller.
	greeting, err := c.Call(svc, "Greet", "Ada")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(greeting)
	// Output: [APP] hello Ada
}

// ExampleOnDestroy demonstrates lifecycle hooks.
func ExampleOnDestroy() {
	m := injector.NewMetadata()
	m.Declare(reflect.TypeFor[*Database](), injector.Constructor(NewDatabase), injector.InjectConstructor())

	c := injector.New(injector.WithMetadata(m))

	_ = c.Register("db", injector.Class[*Database](),
		injector.Eager(),
		injector.OnCreate(func(v any) { fmt.Println("creating", v) }),
		injector.OnDestroy(func(v any) { fmt.Println("destroying", v.(*Database).name) }),
	)

	if err := c.Destroy(); err != nil {
		log.Fatal(err)
	}

	// Output:
	// creating *Database
	// destroying main
	// closed
}

// ExampleNewModule demonstrates using modules to organize registrations.
func ExampleNewModule() {
	databaseModule := injector.NewModule("database",
		injector.Declared[*Database](injector.Constructor(NewDatabase), injector.InjectConstructor()),
		injector.Injectable[*Database](injector.AsSingleton()),
	)

	appModule := injector.NewModule("app",
		databaseModule,
		injector.Declared[*UserService](injector.Constructor(NewUserService), injector.InjectConstructor()),
		injector.Register("app.name", "shop"),
	)

	c := injector.New(injector.WithMetadata(injector.NewMetadata()))
	defer c.Destroy()

	if err := c.Install(appModule); err != nil {
		log.Fatal(err)
	}

	fmt.Println(c.Keys())
	// Output:
	// [*Database app.name]
	// closed
}

// ExampleUnregisteredKeyError demonstrates inspecting resolution errors.
func ExampleUnregisteredKeyError() {
	c := injector.New(injector.WithMetadata(injector.NewMetadata()))
	defer c.Destroy()

	_ = c.Register("database.url", "postgres://localhost/app")

	_, err := c.Resolve("database")

	var notFound injector.UnregisteredKeyError
	if errors.As(err, &notFound) {
		fmt.Println("missing:", notFound.Key)
	}
	fmt.Println(errors.Is(err, injector.ErrUnregisteredKey))
	// Output:
	// missing: database
	// true
}

// Example types

type Logger struct {
	prefix string
}

func NewLogger() *Logger {
	return &Logger{prefix: "[APP] "}
}

func (l *Logger) Log(msg string) {
	fmt.Println(l.prefix + msg)
}

type Database struct {
	name   string
	logger *Logger
}

func NewDatabase(logger *Logger) *Database {
	return &Database{name: "main", logger: logger}
}

func (d *Database) Close() error {
	fmt.Println("closed")
	return nil
}

type User struct {
	ID   int
	Name string
}

type UserService struct {
	db     *Database
	logger *Logger
}

func NewUserService(db *Database, logger *Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func (s *UserService) GetUser(id int) *User {
	return &User{ID: id, Name: "John Doe"}
}

func (s *UserService) Greet(name string, logger *Logger) string {
	return logger.prefix + "hello " + name
}

type Mailer struct {
	from string
	host string
}

func NewMailer(from, host string) *Mailer {
	return &Mailer{from: from, host: host}
}

func (m *Mailer) String() string {
	return m.from + " via " + m.host
}
