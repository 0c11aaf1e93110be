// Package process terminates the headless browser together with the
// renderer and GPU children it spawns.
package process
