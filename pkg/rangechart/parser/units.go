// Package parser reads sheet tables, range references and chart definitions
// from xlsx workbooks.
package parser

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
// 914400 EMU = 1 inch = 96 pixels.
const EMUPerPixel = 9525

// EMUToPixels converts EMU to pixels at 96 DPI.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}
