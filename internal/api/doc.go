// Package api exposes the study service over HTTP. Handlers decode and
// validate requests, call study.Service and render JSON. Error to status
// mapping lives in errors.go and nowhere else.
package api
