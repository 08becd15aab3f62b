// Package classify holds the pattern tables sprintgate uses to label
// command text, file paths, agent output and free-text markers.
//
// Every classifier is plain data plus a lookup. The gate and the feedback
// engine receive classifiers by value, so a rule set can be extended
// without touching either pipeline.
package classify
