package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable classification of a domain error.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindValidation            Kind = "validation"
	KindProviderAuth          Kind = "provider_auth"
	KindProviderRateLimit     Kind = "provider_rate_limit"
	KindProviderNetwork       Kind = "provider_network"
	KindProviderQuota         Kind = "provider_quota"
	KindProviderNotConfigured Kind = "provider_not_configured"
	KindAnalysisFailed        Kind = "analysis_failed"
	KindMergeFailed           Kind = "merge_failed"
	KindInternal              Kind = "internal"
)

type Error struct {
	Kind   Kind
	Code   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, detail string) *Error {
	return &Error{Kind: kind, Code: code, Detail: detail}
}

func NewCloneNotFound(cloneID string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Code:   "CLONE_NOT_FOUND",
		Detail: fmt.Sprintf("Voice clone '%s' not found", cloneID),
	}
}

func NewSampleNotFound(sampleID string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Code:   "SAMPLE_NOT_FOUND",
		Detail: fmt.Sprintf("Writing sample '%s' not found", sampleID),
	}
}

func NewContentNotFound(contentID string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Code:   "CONTENT_NOT_FOUND",
		Detail: fmt.Sprintf("Content '%s' not found", contentID),
	}
}

func NewValidation(detail string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Detail: detail}
}

func NewProviderNotConfigured(name string) *Error {
	return &Error{
		Kind:   KindProviderNotConfigured,
		Code:   "PROVIDER_NOT_CONFIGURED",
		Detail: fmt.Sprintf("AI provider '%s' is not configured. Add an API key in Settings > Providers.", name),
	}
}

func NewProviderAuth(provider, detail string) *Error {
	return &Error{
		Kind:   KindProviderAuth,
		Code:   "PROVIDER_AUTH_ERROR",
		Detail: fmt.Sprintf("%s: %s", provider, detail),
	}
}

func NewProviderRateLimit(provider, detail string) *Error {
	return &Error{
		Kind:   KindProviderRateLimit,
		Code:   "PROVIDER_RATE_LIMITED",
		Detail: fmt.Sprintf("%s: %s", provider, detail),
	}
}

func NewProviderNetwork(provider, detail string) *Error {
	return &Error{
		Kind:   KindProviderNetwork,
		Code:   "PROVIDER_NETWORK_ERROR",
		Detail: fmt.Sprintf("%s: %s", provider, detail),
	}
}

func NewProviderQuota(provider, detail string) *Error {
	return &Error{
		Kind:   KindProviderQuota,
		Code:   "PROVIDER_QUOTA_EXCEEDED",
		Detail: fmt.Sprintf("%s: %s", provider, detail),
	}
}

func NewAnalysisFailed(provider string, cause error) *Error {
	return &Error{
		Kind:   KindAnalysisFailed,
		Code:   "ANALYSIS_FAILED",
		Detail: fmt.Sprintf("Voice analysis failed via %s: %v", provider, cause),
		Err:    cause,
	}
}

func NewMergeFailed(cause error) *Error {
	return &Error{
		Kind:   KindMergeFailed,
		Code:   "MERGE_FAILED",
		Detail: fmt.Sprintf("Voice merge failed: %v", cause),
		Err:    cause,
	}
}

func NewScoringFailed(provider string, cause error) *Error {
	return &Error{
		Kind:   KindAnalysisFailed,
		Code:   "SCORING_FAILED",
		Detail: fmt.Sprintf("Authenticity scoring failed via %s: %v", provider, cause),
		Err:    cause,
	}
}

func NewInternal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Detail: fmt.Sprintf("internal error: %v", cause), Err: cause}
}

// KindOf returns the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to its transport status class.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindProviderNotConfigured:
		return http.StatusBadRequest
	case KindProviderAuth:
		return http.StatusUnauthorized
	case KindProviderRateLimit:
		return http.StatusTooManyRequests
	case KindProviderQuota:
		return http.StatusPaymentRequired
	case KindProviderNetwork, KindAnalysisFailed, KindMergeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
