package middleware

import (
	"fmt"
	"net/http"
)

// RecoverPanic turns a panic in a downstream handler into a call to onPanic,
// which is expected to write a 500 response.
func RecoverPanic(onPanic func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					w.Header().Set("Connection", "close")
					onPanic(w, r, fmt.Errorf("%v", err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
