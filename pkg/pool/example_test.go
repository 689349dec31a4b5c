// Package pool provides example usage of the typed pools.
package pool_test

import (
	"fmt"

	"github.com/ajitpratap0/tables/pkg/pool"
)

// ExampleNew demonstrates creating and using a generic pool.
func ExampleNew() {
	type scratch struct {
		fields []string
	}

	scratchPool := pool.New(
		func() *scratch { return &scratch{fields: make([]string, 0, 8)} },
		func(s *scratch) { s.fields = s.fields[:0] },
	)

	s := scratchPool.Get()
	defer scratchPool.Put(s)

	s.fields = append(s.fields, "x", "x2", "y")
	fmt.Println(len(s.fields))

	// Output:
	// 3
}

// ExampleGetBuffer shows the pooled buffer used by the envelope builder.
func ExampleGetBuffer() {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.WriteString("0\t1\n")
	fmt.Printf("%q\n", buf.String())

	// Output:
	// "0\t1\n"
}
