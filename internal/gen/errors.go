package gen

import "fmt"

// CredentialError means the call could not be authorized: no credential is
// configured, or the service rejected the one supplied. The user recovers
// by setting a valid credential.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential: %s: %v", e.Reason, e.Err)
	}
	return "credential: " + e.Reason
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ResponseFormatError means the service replied but the reply could not be
// parsed into a corpus entry. Retrying the analyze action may succeed.
type ResponseFormatError struct {
	Reason string
	Err    error
}

func (e *ResponseFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response format: %s: %v", e.Reason, e.Err)
	}
	return "response format: " + e.Reason
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }
