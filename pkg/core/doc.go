// Package core defines the shared domain model for heatplan: indicator and
// field templates, table configurations, runtime rows and cell values,
// validation rule sets, and display formats.
//
// The types here are plain data. Behavior lives in the engine packages
// (pkg/formula, pkg/template, pkg/cells, pkg/aggregate, pkg/validate,
// pkg/report), all of which operate on core types passed in per call and
// hold no state of their own.
package core
