package forest_test

import (
	"fmt"

	"github.com/npillmayer/canopy/forest"
	"github.com/npillmayer/canopy/oplog"
)

func Example() {
	f := forest.New(forest.WithLog[string](oplog.New()))
	f.Add("A", "")
	f.Add("B", "A")
	f.Add("C", "A")
	fmt.Println(f.Nodes())
	f.Reparent("B", "C")
	fmt.Println(f.Nodes())
	// Output:
	// [A B C]
	// [A C B]
}

func ExampleSorter() {
	f := forest.New(forest.WithLog[string](oplog.New()))
	f.Add("page", "")
	f.Add("box", "page")
	f.Add("label", "box")
	f.Add("footer", "page")
	s := forest.NewSorter(f)
	s.Reindex()
	items, _ := s.Sort([]string{"footer", "label", "page"}, false)
	fmt.Println(items)
	// Output: [page label footer]
}

func Example_undo() {
	log := oplog.New()
	f := forest.New(forest.WithLog[string](log))
	f.Add("A", "")
	rec := oplog.NewRecorder(log)
	rec.Start()
	defer rec.Stop()
	f.Add("B", "A")
	f.Add("C", "")
	f.Reparent("C", "B")
	fmt.Println(f.Nodes())
	rec.Undo()
	fmt.Println(f.Nodes())
	rec.Undo() // redo
	fmt.Println(f.Nodes())
	// Output:
	// [A B C]
	// [A]
	// [A B C]
}
