// Package interact implements the interaction state machine of the mosaic
// editor.
//
// A [Machine] owns the points working set, the shard draft and the current
// [Mode]. It talks to persistence through a [Backend] and to the display
// through a [Host]; neither is called concurrently.
//
// # Modes
//
//	viewing        fetch points and shards, render, bind
//	creatingShard  fresh draft with a random spark, form revealed after a delay
//	editingShard   draft copied from the clicked cell's shard, revealed after a delay
//	editingPoints  forms hidden, point editor shown, clicks add points
//
// Leaving any mode cancels a pending form reveal and clears the hover
// highlight. Leaving a shard form drops the draft; leaving the point editor
// without finishing restores the points from before the edit.
//
// # Event loop
//
// All methods must be called from one goroutine. Timer callbacks (form
// reveal, debounced render, hover delay) are scheduled on the configured
// [clock.Clock], which must deliver them on that same goroutine. Backend
// calls block the loop for their duration.
package interact
