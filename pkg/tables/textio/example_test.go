package textio_test

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/tables/textio"
	"github.com/ajitpratap0/tables/pkg/value"
)

func ExampleToTextEnvelope() {
	t, _ := tables.New[value.Value](2, func(b *tables.Builder[value.Value]) error {
		if err := b.AddColumn(tables.NewListColumn(tables.Header[value.Value]("city"),
			[]value.Value{value.String("Oslo"), value.String("")})); err != nil {
			return err
		}
		return b.AddColumn(tables.NewSparseColumn(tables.Header[value.Value]("pop"),
			[]tables.Cell[value.Value]{tables.Some(value.Int(709000)), tables.None[value.Value]()}))
	})

	env, err := textio.ToTextEnvelope(context.Background(), t)
	if err != nil {
		fmt.Println(err)
		return
	}

	name, _ := env.Meta.String("column.1.name")
	fmt.Println(env.Type, name)
	fmt.Printf("%q\n", env.Data)
	// Output:
	// table.value pop
	// "Oslo\t709000\n\"\"\t\n"
}

func ExampleReadTextRows() {
	t, _ := tables.New[value.Value](1, func(b *tables.Builder[value.Value]) error {
		for _, name := range []string{"b", "a", "c"} {
			if err := b.AddColumn(tables.NewListColumn(tables.Header[value.Value](name),
				[]value.Value{value.String(name + "!")})); err != nil {
				return err
			}
		}
		return nil
	})

	env, _ := textio.ToTextEnvelope(context.Background(), t)
	decoded, err := textio.ReadTextRows(env)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, h := range decoded.Headers() {
		v, _ := decoded.Get(0, h.Name)
		fmt.Println(h.Name, v)
	}
	// Output:
	// b b!
	// a a!
	// c c!
}
