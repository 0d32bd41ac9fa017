package domain

import "fmt"

// OracleErrorKind names the way an oracle invocation failed.
type OracleErrorKind string

const (
	// OracleTransportFailure covers network errors, timeouts, and non-2xx
	// responses from the scoring service.
	OracleTransportFailure OracleErrorKind = "transport-failure"

	// OracleMalformedResponse means the response body did not match the
	// declared completion schema.
	OracleMalformedResponse OracleErrorKind = "malformed-response"

	// OracleUnparseableScore means the completion text was not an integer
	// on the oracle's declared scale.
	OracleUnparseableScore OracleErrorKind = "unparseable-score"
)

// OracleError is a failure of the external sentiment-scoring call.
type OracleError struct {
	Kind OracleErrorKind
	Err  error
}

func (e *OracleError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle error (%s)", e.Kind)
	}
	return fmt.Sprintf("oracle error (%s): %v", e.Kind, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// PersistenceSink names which of the two persistence sinks failed.
type PersistenceSink string

const (
	SinkPrimaryStore PersistenceSink = "primary-store"
	SinkBackupLog    PersistenceSink = "backup-log"
)

// PersistenceError is a failure writing a classified record to one sink.
type PersistenceError struct {
	Sink PersistenceSink
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError rejects malformed caller input before any pipeline stage
// runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
