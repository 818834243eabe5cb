// Package models holds the persisted row types of the points ledger.
package models

import "time"

// Member is one row of the members table: a unique display name and the
// current point total. The total is maintained transactionally alongside
// the history trail, so it always equals the sum of the member's deltas.
type Member struct {
	Name   string
	Points float64
}

// HistoryEntry is one immutable audit record: the signed delta applied to a
// member, the free-text reason, and the write-time timestamp. The member
// name is denormalized on purpose; renames cascade over these rows.
type HistoryEntry struct {
	MemberName string
	Reason     string
	Delta      float64
	CreatedAt  time.Time
}
