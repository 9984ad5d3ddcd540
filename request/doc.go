// Package request defines the unit of work that flows through quotewatch:
// the persisted work item (Info), the executable Request built from it, the
// four-way Outcome of one execution, and the durable tagged queue contract
// (Store) that holds pending items.
//
// A work item carries exactly one payload variant. The variant set is sealed
// to this package, so a Factory can map items to requests with an exhaustive
// type switch.
package request
