// Package httputil provides HTTP utilities for the API client.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff when it fails with
// a transient error. Callers mark such errors by wrapping them in
// [RetryableError], typically for transport failures and 5xx responses.
// Everything else, such as a 404 or a validation failure, is returned
// immediately:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func(attempt int) error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The attempt number lets a caller treat a repeated request differently,
// for example a DELETE that finds its target already gone.
package httputil
