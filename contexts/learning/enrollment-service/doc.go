// Package enrollment implements cohorts, courses and the three-way
// cohort/course/user enrollment association.
//
// The add/remove operations run a fixed validation pipeline against one
// snapshot of the cohort state; the composite primary key on the enrollment
// row is the storage-level backstop, and the postgres adapter translates a
// concurrent duplicate insert into the same "already enrolled" violation the
// pipeline reports. Error precedence within the pipeline is part of the
// observable contract.
package enrollment
