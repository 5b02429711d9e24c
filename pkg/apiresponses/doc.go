// Package apiresponses provides the JSON error and success envelopes of the
// notification API, shared by the api package and its middlewares.
package apiresponses
