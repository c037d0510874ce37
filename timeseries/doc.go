// Package timeseries provides year-indexed series, panels of series, and
// CSV loading utilities.
//
// A Series holds one entity's annual observations. A Panel maps entity names
// to Series of equal length, which is the joint dataset consumed by the
// multi-series forecasters. Cluster labels are loaded as a read-only
// ClusterAssignment and can be used to subset a panel.
package timeseries
