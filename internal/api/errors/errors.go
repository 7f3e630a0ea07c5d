// Package errors defines the typed errors returned to API clients and
// their gRPC status representation.
package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Domain is the ErrorInfo domain attached to every status.
const Domain = "identity"

const (
	metadataCode    = "code"
	metadataStatus  = "status"
	metadataTimeout = "timeout"
)

// APIError is a domain failure that is safe to show to the caller.
type APIError struct {
	Code       Code
	Message    string
	StatusCode int
	Fields     []string
	// Timeout tells the caller how long to back off before retrying.
	Timeout time.Duration
}

// New creates an APIError with the default message for code.
func New(code Code) *APIError {
	return &APIError{
		Code:       code,
		Message:    code.Message(),
		StatusCode: code.StatusCode(),
	}
}

// NewRequestDataInvalid reports malformed input in the named fields.
func NewRequestDataInvalid(fields ...string) *APIError {
	return New(CodeRequestDataInvalid).WithFields(fields...)
}

// NewRateLimited reports a rate limit lifting after timeout.
func NewRateLimited(code Code, timeout time.Duration) *APIError {
	return New(code).WithTimeout(timeout)
}

// WithFields returns a copy of e listing the offending fields.
func (e *APIError) WithFields(fields ...string) *APIError {
	c := *e
	c.Fields = append([]string(nil), fields...)
	return &c
}

// WithTimeout returns a copy of e carrying a back-off hint.
func (e *APIError) WithTimeout(timeout time.Duration) *APIError {
	c := *e
	c.Timeout = timeout
	return &c
}

// WithMessage returns a copy of e with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Code, e.Message)
}

// Is matches another *APIError with the same code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// TimeoutMillis returns Timeout rounded up to whole milliseconds.
func (e *APIError) TimeoutMillis() int64 {
	if e.Timeout <= 0 {
		return 0
	}
	ms := e.Timeout / time.Millisecond
	if e.Timeout%time.Millisecond != 0 {
		ms++
	}
	return int64(ms)
}

// GRPCStatus converts the error into a status carrying ErrorInfo, and
// BadRequest and RetryInfo details when fields or a timeout are present.
func (e *APIError) GRPCStatus() *status.Status {
	st := status.New(e.Code.GRPCCode(), e.Message)

	info := &errdetails.ErrorInfo{
		Reason: e.Code.String(),
		Domain: Domain,
		Metadata: map[string]string{
			metadataCode:   strconv.Itoa(int(e.Code)),
			metadataStatus: strconv.Itoa(e.StatusCode),
		},
	}
	if e.Timeout > 0 {
		info.Metadata[metadataTimeout] = strconv.FormatInt(e.TimeoutMillis(), 10)
	}

	details := []protoadapt.MessageV1{info}
	if len(e.Fields) > 0 {
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(e.Fields))
		for _, f := range e.Fields {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{Field: f, Description: "invalid"})
		}
		details = append(details, &errdetails.BadRequest{FieldViolations: violations})
	}
	if e.Timeout > 0 {
		details = append(details, &errdetails.RetryInfo{RetryDelay: durationpb.New(time.Duration(e.TimeoutMillis()) * time.Millisecond)})
	}

	withDetails, err := st.WithDetails(details...)
	if err != nil {
		return st
	}
	return withDetails
}

// FromStatus rebuilds an APIError from a status produced by GRPCStatus.
func FromStatus(st *status.Status) (*APIError, bool) {
	if st == nil {
		return nil, false
	}

	var (
		apiErr *APIError
		fields []string
		delay  time.Duration
	)
	for _, d := range st.Details() {
		switch detail := d.(type) {
		case *errdetails.ErrorInfo:
			if detail.GetDomain() != Domain {
				continue
			}
			code, err := strconv.Atoi(detail.GetMetadata()[metadataCode])
			if err != nil {
				continue
			}
			apiErr = New(Code(code))
			apiErr.Message = st.Message()
			if ms, err := strconv.ParseInt(detail.GetMetadata()[metadataTimeout], 10, 64); err == nil {
				apiErr.Timeout = time.Duration(ms) * time.Millisecond
			}
		case *errdetails.BadRequest:
			for _, v := range detail.GetFieldViolations() {
				fields = append(fields, v.GetField())
			}
		case *errdetails.RetryInfo:
			delay = detail.GetRetryDelay().AsDuration()
		}
	}
	if apiErr == nil {
		return nil, false
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
	}
	if apiErr.Timeout == 0 && delay > 0 {
		apiErr.Timeout = delay
	}
	return apiErr, true
}

// FromError extracts an APIError from err, which may be a local
// *APIError or a gRPC status error.
func FromError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	return FromStatus(st)
}

// HasCode reports whether err carries one of the given codes.
func HasCode(err error, codes ...Code) bool {
	apiErr, ok := FromError(err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if apiErr.Code == c {
			return true
		}
	}
	return false
}
