// Package vdom provides a small virtual DOM used to describe preview cards.
//
// Cards are built with element factories and attached to a preview
// container. Hosts that talk to a real page render them to HTML and
// ship them as patches; the in-memory document keeps them as trees.
//
// # Element API
//
//	Div(Class("image-preview"),
//	    Img(Src(dataURL), Alt(name)),
//	    Button(Type("button"), Class("remove-btn"), OnClick(remove)),
//	)
//
// # Hydration
//
// AssignHIDs walks the tree and assigns hydration IDs to interactive
// elements (those with event handlers). A host routes client events back
// to the node with the matching HID via Find.
package vdom
