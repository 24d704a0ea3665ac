// Package dag holds the task graph of a single workflow run: the task records,
// their dependency and dependent edges, and the readiness predicate that decides
// which pending tasks may be promoted to ready.
//
// The graph is plain owned data. It does not schedule anything and it does not
// verify that the dependency set is acyclic; a cycle simply leaves its members
// pending forever. Cycles can be reported separately with CycleMembers.
package dag
