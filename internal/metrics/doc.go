// Package metrics provides [dynamo.Metric] implementations that summarise a
// run: energy and its drift, extremes of an observable, and the drift of a
// quantity that should be conserved.
package metrics
