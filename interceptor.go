package rxws

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type (
	// Interceptor transforms inbound text payloads before they reach a reader.
	Interceptor interface {
		Intercept(text string) string
	}

	InterceptorFunc func(text string) string

	// InterceptorChain applies interceptors in registration order, each one receiving the output
	// of the previous one.
	InterceptorChain []Interceptor
)

func (f InterceptorFunc) Intercept(text string) string {
	return f(text)
}

func (c InterceptorChain) Apply(text string) string {
	for _, interceptor := range c {
		text = interceptor.Intercept(text)
	}
	return text
}

func TrimSpaceInterceptor() Interceptor {
	return InterceptorFunc(strings.TrimSpace)
}

// NormalizeInterceptor rewrites inbound text into the given unicode normalization form.
func NormalizeInterceptor(form norm.Form) Interceptor {
	return InterceptorFunc(form.String)
}
