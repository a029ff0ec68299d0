package results

// OperationResult carries either a domain success or a domain failure out of a
// service operation. Infrastructure errors travel separately as the error
// return; a failure here is an expected business outcome (not found, conflict,
// validation) that handlers translate for the caller.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success value.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a domain failure value.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the operation produced a success value.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the operation produced a domain failure.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
