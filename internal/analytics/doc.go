// Package analytics computes the derived values shown next to persisted
// records: deadline countdowns, trust per share, percentages, funnel and
// PIPE aggregates, cap table percentages, timelines and score trends.
//
// Every function is pure. Anything that depends on the current time takes
// now as an argument.
package analytics
