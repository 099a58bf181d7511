package handlers

import (
	"net/http"
	"strings"

	apperrors "github.com/spec-kit/parking-ticket-service/pkg/util/errorutil"
)

// Operation names one of the two public ticket operations.
type Operation string

const (
	OperationEntry Operation = "entry"
	OperationExit  Operation = "exit"
)

// Public paths.
const (
	EntryPath = "/entry"
	ExitPath  = "/exit"
)

// ResolveOperation routes a method and path. An empty method is a bad request,
// a method other than POST is not allowed and an unknown path is not found.
func ResolveOperation(method, path string) (Operation, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return "", apperrors.NewValidationError("HTTP method not specified", nil)
	}
	if !strings.EqualFold(method, http.MethodPost) {
		return "", apperrors.NewMethodNotAllowed(method)
	}
	switch strings.ToLower(strings.TrimSuffix(path, "/")) {
	case EntryPath:
		return OperationEntry, nil
	case ExitPath:
		return OperationExit, nil
	}
	return "", apperrors.NewRouteNotFound(path)
}
