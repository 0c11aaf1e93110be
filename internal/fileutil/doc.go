// Package fileutil classifies paths and manages the temporary files of the
// print format.
package fileutil
