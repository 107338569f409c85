package constants

// Partition names a logical subdivision of the object store. Every uploaded
// object starts under PartitionReceived and is relocated into exactly one of
// the terminal partitions.
type Partition string

// Stable values (these exact strings become object key prefixes).
const (
	PartitionReceived Partition = "received" // staging area for fresh uploads
	PartitionCash     Partition = "cash"     // cash-equivalent payment methods
	PartitionOther    Partition = "other"    // everything else that processed cleanly
	PartitionFailure  Partition = "failures" // pipeline failed somewhere for this file
)

// Terminal reports whether objects in the partition have reached their final
// disposition.
func (p Partition) Terminal() bool {
	return p != PartitionReceived
}
