// Package viz provides the terminal view of a running phi top.
//
// The body is drawn as a braille wireframe of its three principal sections
// over a patch of the ground plane, next to a plot of the centre height and
// live energy and quaternion readouts.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state and parameters
//	N     - Toggle quaternion renormalisation after each step
//	< >   - Halve/double steps per frame
//	Tab   - Select parameter, Up/Down to adjust it by 5%
//	Arrows, W/S - Orbit camera
//	+ -   - Zoom
package viz
