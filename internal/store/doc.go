// Package store persists exported transform graphs in SQLite.
//
// Records are content addressed: node and property IDs hash (model,
// version, handle), step IDs hash (transform handle, position). Saving
// the same graph twice is a no-op; saving a transform under an existing
// handle replaces its property links and step chain.
//
// # Tables
//
//   - nodes, properties, node_properties: the shared data-model records
//   - transforms: one row per handle with first/last step references
//   - transform_properties: input and output property links, keyed
//     "{node}.{prop}"
//   - steps: the forward-linked chain, next_step_id NULL on the last step
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: next_step_id and link tables are checked
package store
