// Package accesspolicy is the single source of truth for role and ownership
// based access decisions across posts, comments, cohorts and enrollments.
//
// It is a pure decision table: no I/O, no store lookups, no side effects.
// Callers resolve the actor and (where relevant) the resource owner first,
// then consult Decide. Denial reasons are the exact user-facing strings, so
// every engine reports the same message for the same refusal.
package accesspolicy
