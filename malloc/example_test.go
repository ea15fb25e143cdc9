package malloc

import (
	"fmt"

	"github.com/cloudwego/memx/mem"
)

func Example() {
	a := New(mem.NewRegion(0))

	p := a.Malloc(11)
	copy(a.Bytes(p), "hello world")
	fmt.Printf("p: off=%d size=%d\n", p, a.Size(p))

	q := a.Realloc(p, 64)
	fmt.Printf("q: off=%d size=%d data=%q\n", q, a.Size(q), a.Bytes(q)[:11])

	a.Free(q)

	// Output:
	// p: off=16 size=16
	// q: off=40 size=64 data="hello world"
}
