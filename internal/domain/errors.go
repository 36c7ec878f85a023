package domain

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a gateway read failed.
type FetchErrorKind int

const (
	// KindNetwork: the request never produced a response.
	KindNetwork FetchErrorKind = iota + 1
	// KindStatus: the response status was not 2xx.
	KindStatus
	// KindShape: the body was not the expected {data: ...} envelope.
	KindShape
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindShape:
		return "shape"
	}
	return "unknown"
}

// FetchError is the single error type crossing the fetch boundary.
// Error returns the human-readable message shown in the error banner.
type FetchError struct {
	Kind     FetchErrorKind
	Resource Resource
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("Failed to fetch %s (%d)", e.Resource, e.Status)
	case KindShape:
		return fmt.Sprintf("Unexpected response format for %s.", e.Resource)
	}
	if e.Err != nil {
		return fmt.Sprintf("Error loading %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("Unknown error loading %s.", e.Resource)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewStatusError reports a non-2xx response.
func NewStatusError(res Resource, status int) *FetchError {
	return &FetchError{Kind: KindStatus, Resource: res, Status: status}
}

// NewShapeError reports an envelope that is missing data or has the wrong type.
func NewShapeError(res Resource, cause error) *FetchError {
	return &FetchError{Kind: KindShape, Resource: res, Err: cause}
}

// NewNetworkError reports a transport failure.
func NewNetworkError(res Resource, cause error) *FetchError {
	return &FetchError{Kind: KindNetwork, Resource: res, Err: cause}
}

// AsFetchError normalizes any gateway error into a *FetchError for res.
// Errors that are not already a FetchError become KindNetwork.
func AsFetchError(res Resource, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewNetworkError(res, err)
}
