/*
Package flowcanvas provides the graph model behind a node-and-wire pipeline
editor.

# Overview

Users place typed nodes on a canvas, wire output ports to input ports and
submit the result to an external parser service. The Store in this package
owns the nodes and edges and keeps them consistent: an edge never outlives
the node or port it references.

Template nodes derive their input ports from "{{variable}}" tokens in their
text. The portsync package watches text edits, debounces them and rewrites
those ports through Store.SetNodePorts, which prunes stranded edges in the
same step.

# Basic Usage

	store := flowcanvas.NewStore()

	catalog := nodes.DefaultCatalog()
	in, _ := catalog.NewNode(store, flowcanvas.NodeTypeInput, flowcanvas.Position{}, nil)
	tpl, _ := catalog.NewNode(store, flowcanvas.NodeTypeTemplate, flowcanvas.Position{X: 300}, nil)
	_ = store.AddNode(in)
	_ = store.AddNode(tpl)

	sync := portsync.New(store)
	defer sync.Close()
	sync.Sync(tpl.ID, "Hello {{name}}")
	sync.Flush(tpl.ID)

	edge, err := store.Connect(in.ID, "value", tpl.ID, "var-name")

# Change Notification

Subscribe registers a callback that runs after each committed mutation,
outside the store lock and in commit order:

	unsubscribe := store.Subscribe(func(c flowcanvas.Change) {
	    fmt.Println(c.Kind, c.NodeID, len(c.Removed))
	})
	defer unsubscribe()

Callbacks may read the store but must not mutate it from the same goroutine.

# Error Handling

Mutations return sentinel errors wrapped in typed errors:

	_, err := store.Connect("a", "value", "b", "missing")
	if errors.Is(err, flowcanvas.ErrInvalidEndpoint) {
	    // stale UI state; the store is unchanged
	}

	var edgeErr *flowcanvas.EdgeError
	if errors.As(err, &edgeErr) {
	    fmt.Println(edgeErr.Target, edgeErr.TargetPort)
	}

A rejected mutation never leaves a partial effect.
*/
package flowcanvas
