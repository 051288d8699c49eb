// Package pipeline runs the stages of an IJ run in sequence.
//
// A full run is a crawl followed by a clean. Each stage is implemented as a
// Step that receives the run report and fills in its own section.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. The crawl, clean and run commands share one execution path
// 2. It provides consistent error handling and logging across steps
package pipeline
