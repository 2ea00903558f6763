/*
Forestrepl is an interactive shell for experimenting with ordered forests
and undo lists.

Nodes are named by strings; "-" denotes the root.

	forest> add page
	forest> add box page
	forest> record
	forest> reparent box -
	forest> undo

Usage:

	forestrepl [-trace level] [-adapter go|logrus] [-config file.nt]

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/canopy/forest"
	"github.com/npillmayer/canopy/oplog"
)

// tracer traces with key 'canopy.repl'.
func tracer() tracing.Trace {
	return tracing.Select("canopy.repl")
}

func main() {
	var opts options
	flag.StringVar(&opts.traceLevel, "trace", "", "trace level for all tracers (Debug, Info, Error)")
	flag.StringVar(&opts.adapter, "adapter", "", "tracing adapter (go, logrus)")
	flag.StringVar(&opts.configFile, "config", "", "configuration file in NestedText format")
	flag.Parse()

	conf, err := setupConfiguration(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Forest REPL - ordered forest with undo")
	fmt.Println("Type 'help' for available commands, 'quit' to exit")
	fmt.Println()

	repl := NewREPL(conf, os.Stdout)
	repl.Run(os.Stdin)
}

// REPL holds the state of the interactive session.
type REPL struct {
	forest *forest.Forest[string]
	log    *oplog.Log
	rec    *oplog.Recorder
	sorter *forest.Sorter[string]
	prompt string
	out    io.Writer
}

// NewREPL creates a session with an empty forest, writing to out.
func NewREPL(conf schuko.Configuration, out io.Writer) *REPL {
	l := oplog.New()
	f := forest.New(forest.WithLog[string](l))
	r := &REPL{
		forest: f,
		log:    l,
		rec:    oplog.NewRecorder(l),
		sorter: forest.NewSorter(f),
		prompt: "forest> ",
		out:    out,
	}
	if conf != nil {
		if conf.IsSet("repl.prompt") {
			r.prompt = conf.GetString("repl.prompt")
		}
		if conf.GetBool("repl.record") {
			r.rec.Start()
		}
	}
	return r
}

// Run reads commands from in until EOF or 'quit'.
func (r *REPL) Run(in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(r.out, r.prompt)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintln(r.out, "\nGoodbye!")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.handleCommand(input) {
			break
		}
	}
	r.rec.Stop()
}

func (r *REPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	tracer().Debugf("command %q %v", cmd, args)

	switch cmd {
	case "help":
		r.printHelp()

	case "quit", "exit":
		fmt.Fprintln(r.out, "Goodbye!")
		return false

	case "add":
		r.cmdAdd(args)

	case "insert":
		r.cmdInsert(args)

	case "remove", "rm":
		r.cmdRemove(args)

	case "reparent", "mv":
		r.cmdReparent(args)

	case "show":
		r.cmdShow(args)

	case "tree":
		r.cmdTree()

	case "order":
		r.cmdOrder()

	case "reindex":
		r.cmdReindex()

	case "sort":
		r.cmdSort(args)

	case "record":
		r.cmdRecord()

	case "stop":
		r.cmdStop()

	case "undo":
		r.cmdUndo()

	case "events":
		r.cmdEvents()

	case "state":
		r.cmdState()

	default:
		fmt.Fprintf(r.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return true
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `
Forest:
  add <node> [parent]              add node as last child of parent (default: root)
  insert <node> <parent> <index>   add node at position index of parent's children
  remove <node>                    remove node and its subtree
  reparent <node> <parent> [index] move node and its subtree
  show <node>                      print relatives of node
  tree                             print the forest
  order                            print all nodes in render order

Sorting:
  reindex                          take a snapshot of the render order
  sort [-r] <node>...              sort nodes by snapshot

Undo:
  record                           start a new undo list
  stop                             stop recording, keep the undo list
  undo                             undo the list; undo again to redo
  events                           print the undo list
  state                            print recording state

  help, quit

Use '-' for the root.
`)
}

// nodeName maps '-' to the root.
func nodeName(arg string) string {
	if arg == "-" {
		return ""
	}
	return arg
}

func (r *REPL) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, r.forest.Nodes())
}

func (r *REPL) cmdAdd(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(r.out, "Usage: add <node> [parent]")
		return
	}
	parent := ""
	if len(args) == 2 {
		parent = nodeName(args[1])
	}
	r.report(r.forest.Add(args[0], parent))
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(r.out, "Usage: insert <node> <parent> <index>")
		return
	}
	index, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(r.out, "Invalid index: %s\n", args[2])
		return
	}
	r.report(r.forest.Insert(args[0], nodeName(args[1]), index))
}

func (r *REPL) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: remove <node>")
		return
	}
	r.report(r.forest.Remove(args[0]))
}

func (r *REPL) cmdReparent(args []string) {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(r.out, "Usage: reparent <node> <parent> [index]")
		return
	}
	if len(args) == 2 {
		r.report(r.forest.Reparent(args[0], nodeName(args[1])))
		return
	}
	index, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(r.out, "Invalid index: %s\n", args[2])
		return
	}
	r.report(r.forest.ReparentAt(args[0], nodeName(args[1]), index))
}

func (r *REPL) cmdShow(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "Usage: show <node>")
		return
	}
	node := args[0]
	parent, err := r.forest.Parent(node)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	if parent == "" {
		parent = "-"
	}
	children, _ := r.forest.Children(node)
	siblings, _ := r.forest.Siblings(node)
	index, _ := r.forest.Index(node)
	var ancestors, descendants []string
	for a := range r.forest.Ancestors(node) {
		ancestors = append(ancestors, a)
	}
	for d := range r.forest.Descendants(node) {
		descendants = append(descendants, d)
	}
	fmt.Fprintf(r.out, "Node:        %s (#%d in render order)\n", node, index)
	fmt.Fprintf(r.out, "Parent:      %s\n", parent)
	fmt.Fprintf(r.out, "Children:    %v\n", children)
	fmt.Fprintf(r.out, "Siblings:    %v\n", siblings)
	fmt.Fprintf(r.out, "Ancestors:   %v\n", ancestors)
	fmt.Fprintf(r.out, "Descendants: %v\n", descendants)
}

func (r *REPL) cmdTree() {
	fmt.Fprint(r.out, r.forest.String())
}

func (r *REPL) cmdOrder() {
	fmt.Fprintln(r.out, r.forest.Nodes())
}

func (r *REPL) cmdReindex() {
	r.sorter.Reindex()
	fmt.Fprintf(r.out, "Indexed %d nodes\n", r.forest.Len())
}

func (r *REPL) cmdSort(args []string) {
	reverse := false
	if len(args) > 0 && args[0] == "-r" {
		reverse = true
		args = args[1:]
	}
	sorted, err := r.sorter.Sort(args, reverse)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v (try 'reindex')\n", err)
		return
	}
	fmt.Fprintln(r.out, sorted)
}

func (r *REPL) cmdRecord() {
	r.rec.Start()
	fmt.Fprintln(r.out, "Recording")
}

func (r *REPL) cmdStop() {
	r.rec.Stop()
	fmt.Fprintf(r.out, "Stopped recording, %d events in undo list\n", r.rec.Len())
}

func (r *REPL) cmdUndo() {
	n := r.rec.Len()
	if err := r.rec.Undo(); err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	tracer().Infof("undid %d events", n)
	fmt.Fprintf(r.out, "Undid %d events\n", n)
	fmt.Fprintln(r.out, r.forest.Nodes())
}

func (r *REPL) cmdEvents() {
	events := r.rec.Events()
	if len(events) == 0 {
		fmt.Fprintln(r.out, "Undo list is empty")
		return
	}
	for i, ev := range events {
		fmt.Fprintf(r.out, "%3d  %s\n", i, ev)
	}
}

func (r *REPL) cmdState() {
	ops := forest.OperationsFor[string]()
	fmt.Fprintf(r.out, "Recording:  %v (%d events)\n", r.rec.Recording(), r.rec.Len())
	for _, op := range []oplog.Op{ops.Add, ops.Remove, ops.Reparent} {
		fmt.Fprintf(r.out, "%-24s %s\n", op, r.log.State(op))
	}
}
