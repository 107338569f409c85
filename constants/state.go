package constants

// FileState is the canonical state of one file's pipeline run. Transitions
// only move forward; any failure short-circuits to StateRelocatedFailure.
type FileState string

// Stable values (reported verbatim in batch responses and logs).
const (
	StateReceived         FileState = "RECEIVED"          // decoded from the multipart body
	StateStored           FileState = "STORED"            // raw bytes persisted at the received partition
	StateTextExtracted    FileState = "TEXT_EXTRACTED"    // OCR produced non-empty text
	StateRecordExtracted  FileState = "RECORD_EXTRACTED"  // LLM returned a candidate record
	StateNormalized       FileState = "NORMALIZED"        // candidate passed schema normalization
	StateClassified       FileState = "CLASSIFIED"        // destination partition chosen
	StateRelocatedSuccess FileState = "RELOCATED_SUCCESS" // terminal: object moved to its category partition
	StateRelocatedFailure FileState = "RELOCATED_FAILURE" // terminal: object moved to the failure partition
)

// Terminal reports whether no further processing follows this state.
func (s FileState) Terminal() bool {
	return s == StateRelocatedSuccess || s == StateRelocatedFailure
}
