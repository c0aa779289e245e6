// Command whiteboard plays, renders and inspects whiteboard plans.
//
// Plans are looked up in the configured library directory by path, file name
// or slug. `whiteboard play` opens a window and draws a plan step by step in
// time with its narration; `whiteboard render` paints one frame to a PNG without
// a window; `whiteboard resolve` and `whiteboard inspect` report on a plan file.
package main
