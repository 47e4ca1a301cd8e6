// Package billing holds the types shared by every provider client.
//
// It defines:
//   - Provider: the set of cloud providers the service knows about
//   - the error taxonomy used across all remote calls (InvalidArgumentError,
//     UnauthorizedError, InvalidResponseError, TransientError, UpstreamError)
//   - billing-cycle and billing-date validation helpers
//   - FlexString, a string field that tolerates numeric wire values
//
// Every error produced by a provider client belongs to exactly one taxonomy
// type and is matchable with errors.As. Nothing in this package performs
// network I/O.
package billing
