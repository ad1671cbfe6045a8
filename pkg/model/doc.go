// Package model defines the per-form definition consumed by the wizard engine.
// A Definition is the declarative configuration object (steps, groups, payer
// tables, scored questions, payload sections, submit endpoint); Compile turns
// it into a Form where table cells and questions are expanded into concrete
// fields. Table cells are named <rowPrefix><Column> ("ss62Client") and grouped
// per row as <section>-<row> ("income-ss62"), so a GroupTotal is always the
// sum of the fields sharing one group key. Derived columns (the assets
// "currentValue") are ungrouped: they never count toward a row total.
package model
